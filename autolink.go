// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var (
	uriAutolinkPattern = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9.+-]*):[^<> \n]+>`)

	emailAutolinkPattern = regexp.MustCompile("<([a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@" +
		`[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?` +
		`(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)>`)
)

// uriSchemes is the set of schemes recognized in URI autolinks,
// stored case-folded.
var uriSchemes = newSchemeSet(
	"coap", "doi", "javascript", "aaa", "aaas", "about", "acap", "cap", "cid",
	"crid", "data", "dav", "dict", "dns", "file", "ftp", "geo", "go", "gopher",
	"h323", "http", "https", "iax", "icap", "im", "imap", "info", "ipp", "iris",
	"iris.beep", "iris.xpc", "iris.xpcs", "iris.lwz", "ldap", "mailto", "mid",
	"msrp", "msrps", "mtqp", "mupdate", "news", "nfs", "ni", "nih", "nntp",
	"opaquelocktoken", "pop", "pres", "rtsp", "service", "session", "shttp",
	"sieve", "sip", "sips", "sms", "snmp", "soap.beep", "soap.beeps", "tag",
	"tel", "telnet", "tftp", "thismessage", "tn3270", "tip", "tv", "urn",
	"vemmi", "ws", "wss", "xcon", "xcon-userid", "xmlrpc.beep", "xmlrpc.beeps",
	"xmpp", "z39.50r", "z39.50s", "adiumxtra", "afp", "afs", "aim", "apt",
	"attachment", "aw", "beshare", "bitcoin", "bolo", "callto", "chrome",
	"chrome-extension", "com-eventbrite-attendee", "content", "cvs",
	"dlna-playsingle", "dlna-playcontainer", "dtn", "dvb", "ed2k", "facetime",
	"feed", "finger", "fish", "gg", "git", "gizmoproject", "gtalk", "hcp",
	"icon", "ipn", "irc", "irc6", "ircs", "itms", "jar", "jms", "keyparc",
	"lastfm", "ldaps", "magnet", "maps", "market", "message", "mms", "ms-help",
	"msnim", "mumble", "mvn", "notes", "oid", "palm", "paparazzi", "platform",
	"proxy", "psyc", "query", "res", "resource", "rmi", "rsync", "rtmp",
	"secondlife", "sftp", "sgn", "skype", "smb", "soldat", "spotify", "ssh",
	"steam", "svn", "teamspeak", "things", "udp", "unreal", "ut2004",
	"ventrilo", "view-source", "webcal", "wtai", "wyciwyg", "xfire", "xri",
	"ymsgr",
)

func newSchemeSet(schemes ...string) map[string]struct{} {
	fold := cases.Fold()
	m := make(map[string]struct{}, len(schemes))
	for _, s := range schemes {
		m[fold.String(s)] = struct{}{}
	}
	return m
}

// IsKnownScheme reports whether scheme (without the colon)
// is recognized in URI autolinks.
// The comparison is case-insensitive.
func IsKnownScheme(scheme string) bool {
	_, ok := uriSchemes[cases.Fold().String(scheme)]
	return ok
}

// findURIAutolink finds the leftmost "<scheme:...>" autolink
// whose scheme is known.
func findURIAutolink(text string, from int) (inlineAtom, bool) {
	for from < len(text) {
		loc := uriAutolinkPattern.FindStringSubmatchIndex(text[from:])
		if loc == nil {
			break
		}
		start, end := from+loc[0], from+loc[1]
		if IsKnownScheme(text[from+loc[2] : from+loc[3]]) {
			return inlineAtom{
				kind:    URIAutolinkKind,
				start:   start,
				end:     end,
				content: text[start+1 : end-1],
			}, true
		}
		from = start + 1
	}
	return inlineAtom{}, false
}

// findEmailAutolink finds the leftmost "<user@host>" autolink.
func findEmailAutolink(text string, from int) (inlineAtom, bool) {
	if !strings.Contains(text[from:], "@") {
		return inlineAtom{}, false
	}
	loc := emailAutolinkPattern.FindStringSubmatchIndex(text[from:])
	if loc == nil {
		return inlineAtom{}, false
	}
	return inlineAtom{
		kind:    EmailAutolinkKind,
		start:   from + loc[0],
		end:     from + loc[1],
		content: text[from+loc[2] : from+loc[3]],
	}, true
}
