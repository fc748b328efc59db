package upload

import "github.com/halcyonweb/mediakit/internal/imaging"

// Profile describes where a finished upload lands and how it is transcoded.
// Each use case the site supports has a fixed entry; unknown tags are
// rejected at the boundary rather than silently defaulted.
type Profile struct {
	// Dir is relative to the configured media root
	Dir            string
	URLPrefix      string
	FilenamePrefix string
	Quality        int
	MaxWidth       int
	MaxHeight      int
}

var profiles = map[string]Profile{
	"project": {
		Dir:            "images/Projects",
		URLPrefix:      "/images/Projects/",
		FilenamePrefix: "project_image_",
		Quality:        85,
		MaxWidth:       2000,
		MaxHeight:      2000,
	},
	"avatar": {
		Dir:            "profiles",
		URLPrefix:      "/profiles/",
		FilenamePrefix: "profile_",
		Quality:        90,
		MaxWidth:       800,
		MaxHeight:      800,
	},
	"blog": {
		Dir:            "images/Blogs",
		URLPrefix:      "/images/Blogs/",
		FilenamePrefix: "blog_image_",
		Quality:        85,
		MaxWidth:       2000,
		MaxHeight:      2000,
	},
}

// ProfileFor looks up the profile for a use-case tag
func ProfileFor(tag string) (Profile, error) {
	p, ok := profiles[tag]
	if !ok {
		return Profile{}, &UnknownUseCaseError{Tag: tag}
	}
	return p, nil
}

// TranscodeOptions returns the imaging options for this profile
func (p Profile) TranscodeOptions() imaging.Options {
	return imaging.Options{
		Quality:   p.Quality,
		MaxWidth:  p.MaxWidth,
		MaxHeight: p.MaxHeight,
	}
}
