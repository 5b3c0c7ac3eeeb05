// share.go - Direct-download rewriting for file host share links.
package assets

import (
	"net/url"
	"regexp"
	"strings"
)

var driveFileID = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`)

// RewriteShareURL turns share-page links of common file hosts into direct
// download links. Other URLs are returned unchanged.
//
//	https://drive.google.com/file/d/ID/view  -> https://drive.google.com/uc?export=download&id=ID
//	https://drive.google.com/open?id=ID      -> https://drive.google.com/uc?export=download&id=ID
//	https://www.dropbox.com/s/x/a.png?dl=0   -> https://www.dropbox.com/s/x/a.png?dl=1
func RewriteShareURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case host == "drive.google.com":
		id := ""
		if m := driveFileID.FindStringSubmatch(u.Path); m != nil {
			id = m[1]
		} else if u.Path == "/open" || u.Path == "/uc" {
			id = u.Query().Get("id")
		}
		if id == "" {
			return raw
		}
		return "https://drive.google.com/uc?export=download&id=" + url.QueryEscape(id)

	case host == "dropbox.com" || strings.HasSuffix(host, ".dropbox.com"):
		q := u.Query()
		q.Del("raw")
		q.Set("dl", "1")
		u.RawQuery = q.Encode()
		return u.String()
	}
	return raw
}
