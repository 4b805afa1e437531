//go:build amd64
// +build amd64

package wildcopy

import "golang.org/x/sys/cpu"

func detectFeaturesImpl() {
	features.HasSSE41 = cpu.X86.HasSSE41
	features.HasAVX2 = cpu.X86.HasAVX2
}
