package names

// Nicknames maps formal first names to the shortened forms that appear in
// docket text. Keys and values are lowercase.
var Nicknames = map[string][]string{
	"alexandra":   {"alex"},
	"alexander":   {"alex"},
	"anuraag":     {"raag"},
	"beth":        {"elizabeth"},
	"billy":       {"bill"},
	"catherine":   {"cathy", "casey"},
	"catharine":   {"cathy", "casey"},
	"christian":   {"chris"},
	"christopher": {"chris"},
	"david":       {"dave"},
	"daniel":      {"dan"},
	"deborah":     {"deb"},
	"debora":      {"deb"},
	"debra":       {"deb"},
	"edward":      {"ed"},
	"elizabeth":   {"beth"},
	"frederic":    {"fred"},
	"frederick":   {"fred"},
	"gabriel":     {"gabe"},
	"gregory":     {"greg"},
	"jacob":       {"jake"},
	"jackson":     {"jack"},
	"joseph":      {"joe", "j"},
	"johnathan":   {"john"},
	"jonathan":    {"john"},
	"jonothan":    {"john"},
	"judith":      {"judy"},
	"katherine":   {"kathy"},
	"katharine":   {"kathy"},
	"leroy":       {"lee"},
	"margaret":    {"maggie"},
	"martin":      {"marty"},
	"matthew":     {"matt"},
	"michael":     {"mike"},
	"megan":       {"meg"},
	"nathaniel":   {"nathan", "nate"},
	"nathaneal":   {"nathan", "nate"},
	"nathanel":    {"nathan", "nate"},
	"nickolas":    {"nick"},
	"nicholas":    {"nick"},
	"nicolas":     {"nick"},
	"pamela":      {"pam"},
	"patricia":    {"patti"},
	"patrick":     {"pat"},
	"richard":     {"rich"},
	"rodolfo":     {"rudy"},
	"sam":         {"sam"},
	"samuel":      {"sam"},
	"samantha":    {"sam"},
	"samson":      {"sam"},
	"simeon":      {"sim"},
	"solomon":     {"sol"},
	"stephen":     {"steve"},
	"steven":      {"steve"},
	"stephan":     {"steve"},
	"theodore":    {"ted"},
	"theadore":    {"ted"},
	"thomas":      {"tom"},
	"timothy":     {"tim"},
	"william":     {"will", "wm", "chip"},
}

// NameUnifier maps spelling variants of a first name to one canonical
// spelling so that "katherine" and "catherine" land in the same pool.
var NameUnifier = map[string]string{
	"allan":      "allen",
	"allen":      "allen",
	"bryan":      "bryan",
	"brian":      "bryan",
	"catherine":  "catherine",
	"catharine":  "catherine",
	"deborah":    "deborah",
	"debora":     "deborah",
	"debra":      "deborah",
	"elisabeth":  "elizabeth",
	"elizabeth":  "elizabeth",
	"erick":      "erik",
	"erik":       "erik",
	"eric":       "erik",
	"frederic":   "frederick",
	"frederick":  "frederick",
	"harold":     "harold",
	"herold":     "herold",
	"jacquelyn":  "jacqueline",
	"jacqueline": "jacqueline",
	"janis":      "janice",
	"janice":     "janice",
	"johnathan":  "johnathan",
	"jonathan":   "johnathan",
	"jonothan":   "johnathan",
	"katherine":  "catherine",
	"katharine":  "catherine",
	"kristin":    "kristen",
	"kristen":    "kristen",
	"lawrence":   "lawrence",
	"laurence":   "lawrence",
	"lewis":      "lewis",
	"louis":      "lewis",
	"marcia":     "marsha",
	"marsha":     "marsha",
	"megan":      "megan",
	"meagan":     "megan",
	"meghan":     "megan",
	"michelle":   "michelle",
	"michele":    "michelle",
	"michael":    "michael",
	"mikel":      "michael",
	"nathaniel":  "nathaniel",
	"nathaneal":  "nathaniel",
	"nathanel":   "nathaniel",
	// typo catch for a single SDNY magistrate
	"netburn":  "netburn",
	"netbum":   "netburn",
	"nickolas": "nicholas",
	"nicholas": "nicholas",
	"nicolas":  "nicholas",
	"patrick":  "patrick",
	"patric":   "patrick",
	"randal":   "randall",
	"randall":  "randall",
	"ricard":   "richard",
	"samuel":   "sam",
	"sam":      "sam",
	"sally":    "sally",
	"sallie":   "sally",
	"sonia":    "sonja",
	"sonja":    "sonja",
	"stepben":  "stephen",
	"stephem":  "stephen",
	"stephen":  "stephen",
	"stephan":  "stephen",
	"stewart":  "stuart",
	"stuart":   "stuart",
	"sylvia":   "sylvia",
	"silvia":   "sylvia",
	"susan":    "susan",
	"suzanne":  "susan",
	"theodore": "theodore",
	"theadore": "theodore",
	"teresa":   "theresa",
	"theresea": "theresa",
	"thrse":    "therese",
	"wm":       "william",
}
