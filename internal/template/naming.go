package template

import (
	"strconv"
	"strings"

	"github.com/edvin/branchbox/internal/model"
)

// SourcePrefix is the artifact bucket prefix that pipeline sources are polled from.
const SourcePrefix = "sources/"

// CleanName strips every character that is not an ASCII letter or digit.
func CleanName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UniqueID returns the resource suffix of the service at index. The index is
// always appended so two services on the same repository and branch stay distinct.
// The deployment trigger relies on this being identical to what the template used.
func UniqueID(svc model.Service, index int) string {
	return CleanName(svc.Repo) + CleanName(svc.Branch) + strconv.Itoa(index)
}

// SourceKey returns the artifact bucket key a service pipeline watches.
func SourceKey(uniqueID string) string {
	return SourcePrefix + uniqueID + ".zip"
}

// HostTag returns the Name tag value of the environment host. The deployment
// group filters on it so environments in one region never cross-deploy.
func HostTag(stackName string) string {
	return "BranchBox-" + stackName
}
