package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// knownApps maps package names the tracker commonly reports to display names.
// Prompting with real app names instead of raw packages gives the classifier
// far better category accuracy.
var knownApps = map[string]string{
	"com.google.android.youtube":      "YouTube",
	"com.google.android.apps.docs":    "Google Docs",
	"com.google.android.gm":           "Gmail",
	"com.google.android.calendar":     "Google Calendar",
	"com.android.chrome":              "Chrome",
	"com.instagram.android":           "Instagram",
	"com.twitter.android":             "X (Twitter)",
	"com.facebook.katana":             "Facebook",
	"com.kakao.talk":                  "KakaoTalk",
	"com.naver.webtoon":               "Naver Webtoon",
	"com.nhn.android.search":          "Naver",
	"com.netflix.mediaclient":         "Netflix",
	"com.spotify.music":               "Spotify",
	"com.notion.id":                   "Notion",
	"com.microsoft.office.word":       "Microsoft Word",
	"com.duolingo":                    "Duolingo",
	"com.zhiliaoapp.musically":        "TikTok",
	"com.discord":                     "Discord",
	"com.reddit.frontpage":            "Reddit",
	"com.ss.android.ugc.trill":        "TikTok",
	"com.google.android.apps.classroom": "Google Classroom",
}

var knownPackages = func() []string {
	pkgs := make([]string, 0, len(knownApps))
	for pkg := range knownApps {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}()

// DisplayName resolves a package name to a human-readable app name. Exact
// catalog hits win; otherwise a fuzzy match on the app segment catches
// vendor-suffixed variants (com.google.android.youtube.tv and the like), and
// as a last resort the final package segment is prettified.
func DisplayName(pkg string) string {
	if name, ok := knownApps[pkg]; ok {
		return name
	}

	for _, known := range knownPackages {
		if strings.HasPrefix(pkg, known+".") {
			return knownApps[known]
		}
	}

	segments := strings.Split(pkg, ".")
	last := segments[len(segments)-1]
	if last == "" {
		return pkg
	}

	matches := fuzzy.Find(last, knownPackages)
	for _, match := range matches {
		candidate := knownPackages[match.Index]
		if candidate[strings.LastIndex(candidate, ".")+1:] == last {
			return knownApps[candidate]
		}
	}

	return strings.ToUpper(last[:1]) + last[1:]
}

// PromptLines renders aggregated minutes as the data lines fed to the
// classifier, heaviest usage first with package name as tie-break.
func PromptLines(minutes map[string]int) []string {
	type entry struct {
		pkg  string
		mins int
	}
	entries := make([]entry, 0, len(minutes))
	for pkg, mins := range minutes {
		entries = append(entries, entry{pkg: pkg, mins: mins})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].mins != entries[j].mins {
			return entries[i].mins > entries[j].mins
		}
		return entries[i].pkg < entries[j].pkg
	})

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("- %s (%s): %d minutes", DisplayName(e.pkg), e.pkg, e.mins)
	}
	return lines
}
