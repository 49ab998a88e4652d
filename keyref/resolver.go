package keyref

import (
	"net/url"
	"strings"
)

const pathStyleSegment = "/file/"

// Resolve maps a raw reference to the canonical storage key to refresh.
//
// A reference that does not look like an absolute URL is already a key and is
// returned unchanged. Absolute URLs are recognized in path style (a literal
// "/file/<bucket>/" segment) and virtual-host style (".s3." in the host); the
// key is the path beyond the bucket, query string stripped. Empty input and
// unrecognized URL shapes return ("", false).
func Resolve(reference string) (string, bool) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", false
	}

	u, err := url.Parse(reference)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Not an absolute URL: the reference is the key itself.
		if err != nil || strings.Contains(reference, "://") {
			return "", false
		}
		return reference, true
	}

	if key, ok := pathStyleKey(u.Path); ok {
		return key, true
	}
	if strings.Contains(u.Host, ".s3.") {
		key := strings.TrimPrefix(u.Path, "/")
		if key == "" {
			return "", false
		}
		return key, true
	}

	return "", false
}

func pathStyleKey(path string) (string, bool) {
	idx := strings.Index(path, pathStyleSegment)
	if idx < 0 {
		return "", false
	}

	rest := path[idx+len(pathStyleSegment):]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 || slash == len(rest)-1 {
		// No key beyond the bucket segment.
		return "", false
	}

	return rest[slash+1:], true
}
