package cos

import jsoniter "github.com/json-iterator/go"

// JSON is used to marshal/unmarshal the stats snapshot file (see
// stats.WriteSnapshotFile), initialized once at package load.
var JSON jsoniter.API

func init() {
	JSON = jsoniter.Config{
		EscapeHTML:            false,
		DisallowUnknownFields: true,
		SortMapKeys:           true,
	}.Froze()
}
