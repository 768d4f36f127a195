// Package params holds the fixed Diffie-Hellman and Feige-Fiat-Shamir
// protocol constants both peers agree on out of band, built once at package
// init.
package params

import "github.com/vertexhub/securelink/internal/bigint"

// DH group 5 (RFC 3526), the 1536-bit MODP group: generator and safe prime.
var (
	DHGenerator *bigint.Int
	DHModulus   *bigint.Int
)

// FFS modulus (a Blum integer) and the five-element private key vector the
// client proves knowledge of.
var (
	FFSModulus *bigint.Int
	FFSPrivate []*bigint.Int
)

// KeyElementCount is the number of FFS private key elements (k).
const KeyElementCount = 5

// AuthenticationRounds is the number of independent FFS rounds the server
// demands before accepting the client's identity (T).
const AuthenticationRounds = 4

func mustDecimal(s string) *bigint.Int {
	v, err := bigint.FromDecimalString(s)
	if err != nil {
		panic("params: invalid decimal constant: " + err.Error())
	}
	return v
}

func mustHex(s string) *bigint.Int {
	v, err := bigint.FromHexString(s)
	if err != nil {
		panic("params: invalid hex constant: " + err.Error())
	}
	return v
}

func init() {
	DHGenerator = mustDecimal("2")
	DHModulus = mustHex("0xFFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
		"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
		"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
		"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
		"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
		"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
		"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
		"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
		"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9" +
		"DE2BCBF6955817183995497CEA956AE515D2261898FA0510" +
		"15728E5A8AACAA68FFFFFFFFFFFFFFFF")

	FFSModulus = mustDecimal("6854094740328716964537162194987044147141068353435567001423495886123986431524484180445077931935555842918624004333312819870" +
		"768234350338831770704569330358466595153891946219009802123179173846336429131525643935623013369566827022032382397164259862427478592037668" +
		"806680871173899594707261102765034694450679268176745975368118568508461153092679300169555029731508192995713218354934548201765849829866564" +
		"705211040032434877100776622388338510367704268096270459411126422808037880654833042742865847679830939071485129307797779927643477548400238" +
		"9275941552005040119499664225566691847461439020540844282757762659001103626502226286465445073")

	FFSPrivate = []*bigint.Int{
		mustDecimal("134627368046300552427213971528104503574802276462752360572449387008678412666545109350352053965887049525763213237888074548437224344385138" +
			"30037582842914734413992703663821923324154958251979486288443708792361188361074274969530207122868456238651087396104167358939516245927" +
			"9671886897123837452469539076695340931353283"),
		mustDecimal("305720623684541830382357813174126029572888631512807696562043329322051733106703141875635517872428472166185802005522830245254865302672537" +
			"66100482693842740291209585559262106971141610901161409536404597278949464549570059628407105904318512095356799626487855944853455580447" +
			"753546642226583693575593097486168856693183"),
		mustDecimal("119925541934206168022269974280027645238316170164087398691457253785998088673324437188441316732899429768497870197942410390497397537518637" +
			"98558481766268133289942476026866293856884861401917243107268289710931977422012070587349157831256048318188104862768896006005771383972" +
			"2276384686732650457446521916563823532945558"),
		mustDecimal("163824803353976558309704168845282494449802842384031872339220008472998725791673617970083314497443372239716700354951383227631141118458848" +
			"05102790005957014623966775102121458245607889979406601053796154867987352404712140962107572703120398778495079884459467648135222820392" +
			"7250750932942883988689332663391207969147633"),
		mustDecimal("179666982146692031553424715309143768519745212741152008073209265291978766479247697385798876093698815035272972016125798688468091605771393" +
			"64987829414721871273044413071629544628638710464916371816036580416416817070896269491500551737921441363159992115746550168590679593655" +
			"3844375731335252153836344762325956046790606"),
	}
}
