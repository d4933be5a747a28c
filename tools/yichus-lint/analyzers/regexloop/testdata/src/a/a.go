package a

import "regexp"

func bad(names []string) {
	for _, name := range names {
		re := regexp.MustCompile(`[^a-z0-9_]`) // want "regexp.MustCompile inside loop"
		_ = re.ReplaceAllString(name, "_")
	}
}

func badCompile(names []string) {
	for _, name := range names {
		re, _ := regexp.Compile(`[^a-z0-9_]`) // want "regexp.Compile inside loop"
		_ = re.ReplaceAllString(name, "_")
	}
}

var sanitize = regexp.MustCompile(`[^a-z0-9_]`)

func good(names []string) {
	for _, name := range names {
		_ = sanitize.ReplaceAllString(name, "_")
	}
}

func goodHoisted(names []string) {
	re := regexp.MustCompile(`_+`)
	for _, name := range names {
		_ = re.ReplaceAllString(name, "_")
	}
}
