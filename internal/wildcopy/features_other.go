//go:build !amd64 && !arm64
// +build !amd64,!arm64

package wildcopy

func detectFeaturesImpl() {}
