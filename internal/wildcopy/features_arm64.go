//go:build arm64
// +build arm64

package wildcopy

import "golang.org/x/sys/cpu"

func detectFeaturesImpl() {
	features.HasNEON = cpu.ARM64.HasASIMD
}
