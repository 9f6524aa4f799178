// Package avatarx derives the 3D/2D/portrait variants of an avatar URL.
// Avatars come either from the Ready Player Me generator (.glb models with
// predictable render URLs) or as plain raster uploads.
package avatarx

import (
	"regexp"
	"strings"
)

const providerHost = "readyplayer.me"

var modelIDRe = regexp.MustCompile(`([A-Za-z0-9]+)\.glb$`)

// Set is the full derived variant set for one avatar. Fields other than
// Avatar are empty when no variant can be derived.
type Set struct {
	Avatar         string
	Avatar3D       string
	Avatar2D       string
	AvatarPortrait string
}

// Normalize classifies url as a 3D model, a raster image, or neither, and
// derives the remaining variants. URLs of neither class pass through with no
// derived fields; that is a silent degrade, not an error.
//
// Normalize is idempotent: feeding the Avatar field of a result back in
// yields the same derived set.
func Normalize(url string) Set {
	switch {
	case strings.HasSuffix(url, ".glb"):
		return normalize3D(url)
	case isRaster(url):
		return normalize2D(url)
	default:
		return Set{Avatar: url}
	}
}

func isRaster(url string) bool {
	return strings.HasSuffix(url, ".png") ||
		strings.HasSuffix(url, ".jpg") ||
		strings.HasSuffix(url, ".jpeg")
}

func isProviderHosted(url string) bool {
	return strings.Contains(url, providerHost)
}

func normalize3D(url string) Set {
	s := Set{
		Avatar:   url,
		Avatar3D: url,
		Avatar2D: strings.TrimSuffix(url, ".glb") + ".png",
	}

	s.AvatarPortrait = s.Avatar2D
	if isProviderHosted(url) {
		if m := modelIDRe.FindStringSubmatch(url); m != nil {
			s.AvatarPortrait = portraitURL(m[1])
		}
	}
	return s
}

func normalize2D(url string) Set {
	s := Set{
		Avatar:         url,
		Avatar2D:       url,
		AvatarPortrait: url,
	}
	if isProviderHosted(url) && strings.HasSuffix(url, ".png") {
		s.Avatar3D = strings.TrimSuffix(url, ".png") + ".glb"
	}
	return s
}

func portraitURL(modelID string) string {
	return "https://models.readyplayer.me/" + modelID + ".png?textureAtlas=2048&morphTargets=ARKit"
}
