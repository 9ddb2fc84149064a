package registry

// AdditionalRepresentations maps codebook NIDs to curated extra name
// forms. These judges proved hard to map algorithmically, usually a
// maternal name drop, a hyphenated name, or a nicknamed middle name.
var AdditionalRepresentations = map[string][]string{
	"1394646": {"leslie abrams gardner"},
	"6385001": {"raul manuel arias"},
	"1394196": {"nelson stephen romn"},
	"1391691": {"ed kinkeade"},
	"1389116": {"frederick van sickle"},
	"1377801": {"fred biery jr"},
	"1378846": {"ed carnes"},
	"1383696": {"roger h lawson jr"},
	"4027846": {"chip campbell jr"},
}

// Dynasties maps codebook NIDs to the disambiguated name of judges who
// share a full name with a relative on the bench. The suffix is the only
// thing telling them apart, so each member seeds under the suffixed name
// and distinct codebook IDs keep the pair from merging.
var Dynasties = map[string]string{
	"1383911": "stephen nathaniel limbaugh",
	"1392721": "stephen nathaniel limbaugh jr",
	"1385266": "james maxwell moody",
	"1394351": "james maxwell moody jr",
	"1394201": "william horsley orrick iii",
	"1385986": "william horsley orrick jr",
	"1392616": "william lindsay osteen jr",
	"1385991": "william lindsay osteen sr",
	"1386076": "parker barrington daniels jr",
	"1386071": "parker barrington daniels sr",
	"1386146": "robert porter patterson jr",
	"1386151": "robert porter patterson sr",
}
