// Copyright 2026 The Campus Haiti Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tenancy

import (
	"net"
	"strings"
)

// previewSuffix is the preview-hosting domain. Deploy previews live at
// <slug>.<project>.vercel.app, so the project label must be skipped when
// deciding whether a first label is a tenant candidate.
const previewSuffix = ".vercel.app"

// Candidate returns the raw subdomain label of hostname, before the
// reserved-namespace filter is applied. The routing middleware uses this to
// special-case the admin subdomain, which Resolve would report as no tenant.
//
// Hostname shapes:
//
//	localhost, 127.0.0.1, [::1]          -> ""
//	campushaiti.org                      -> ""   (2 labels, apex)
//	quisqueya.campushaiti.org            -> "quisqueya"
//	project.vercel.app                   -> ""   (preview apex)
//	quisqueya.project.vercel.app         -> "quisqueya"
func Candidate(hostname string) string {
	host := stripPort(hostname)
	if host == "" || isLoopback(host) {
		return ""
	}

	labels := strings.Split(strings.ToLower(host), ".")
	if strings.HasSuffix(strings.ToLower(host), previewSuffix) {
		// <project>.vercel.app is the deployment itself, not a tenant.
		if len(labels) >= 4 {
			return labels[0]
		}
		return ""
	}
	if len(labels) >= 3 {
		return labels[0]
	}
	return ""
}

// Resolve maps hostname to a tenant slug, or "" when the host carries no
// tenant. Reserved subdomains (admin, www, api, ...) are never tenants.
// Resolution never fails: malformed hosts simply yield "".
func Resolve(hostname string) string {
	candidate := Candidate(hostname)
	if candidate == "" || Reserved(candidate) {
		return ""
	}
	return candidate
}

func stripPort(hostname string) string {
	if host, _, err := net.SplitHostPort(hostname); err == nil {
		return host
	}
	return hostname
}

func isLoopback(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	host = strings.Trim(host, "[]")
	if ip := net.ParseIP(host); ip != nil {
		return true // serving pages off a raw IP never carries a tenant
	}
	return false
}
