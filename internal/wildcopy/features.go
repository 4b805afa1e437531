package wildcopy

import (
	"runtime"
	"sync"
)

// Features reports the wide-copy instruction sets available on the host
// CPU. lz4opt's decode loop never branches on these (it stays portable
// Go), but the -v summary reports them the way the teacher's simd package
// did, so a user can tell whether a future assembly fast path would help.
type Features struct {
	Arch     string
	HasSSE41 bool
	HasAVX2  bool
	HasNEON  bool
}

var (
	detectOnce sync.Once
	features   Features
)

// Detect returns the detected CPU features, probing once and caching the
// result.
func Detect() Features {
	detectOnce.Do(func() {
		features.Arch = runtime.GOARCH
		detectFeaturesImpl()
	})
	return features
}
