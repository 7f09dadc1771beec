// Package status provides status information collection and display for compleat.
package status

import (
	"os"
	"time"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/config"
	"github.com/NikitaCOEUR/compleat/internal/matchers"
	"github.com/NikitaCOEUR/compleat/internal/modindex"
	"github.com/NikitaCOEUR/compleat/internal/namespace"
	"github.com/NikitaCOEUR/compleat/pkg/version"
)

// Input is the assembled engine a status report is built from
type Input struct {
	Dir        string
	Config     *config.Config
	Files      []string
	GlobalPath string

	Registrations []completion.Registration
	Blocked       []string
	Namespace     *namespace.Namespace
	Index         *modindex.Index
	Cache         *modindex.Cache
}

// Collect gathers status information from in
func Collect(in Input) *Data {
	data := &Data{
		CurrentDir:   in.Dir,
		Version:      version.Version,
		LocalConfigs: make([]ConfigFile, 0),
		Matchers:     make([]MatcherInfo, 0, len(in.Registrations)),
	}

	collectConfigInfo(data, in)
	data.Blocked = append([]string(nil), in.Blocked...)

	for _, reg := range in.Registrations {
		_, script := reg.Matcher.(*matchers.ScriptMatcher)
		data.Matchers = append(data.Matchers, MatcherInfo{
			Name:      reg.Name,
			Exclusive: reg.Exclusive,
			Script:    script,
		})
	}

	if in.Namespace != nil {
		data.Namespace = &NamespaceInfo{
			Locals:   len(in.Namespace.Locals()),
			Builtins: len(in.Namespace.Builtins()),
		}
		if in.Config != nil {
			data.Namespace.Path = in.Config.Namespace
		}
	}

	if in.Index != nil {
		data.Modules = collectModulesInfo(in.Index, in.Cache)
	}
	return data
}

func collectConfigInfo(data *Data, in Input) {
	if in.Config != nil {
		data.Greedy = in.Config.Greedy
		data.Delimiters = in.Config.Delimiters
		data.Output = in.Config.Output
		data.Disabled = append([]string(nil), in.Config.Disabled...)
	}

	loaded := make(map[string]bool, len(in.Files))
	for _, f := range in.Files {
		loaded[f] = true
	}

	if in.GlobalPath != "" {
		_, err := os.Stat(in.GlobalPath)
		data.GlobalConfig = &ConfigFile{
			Path:   in.GlobalPath,
			Exists: err == nil,
			Loaded: loaded[in.GlobalPath],
		}
	}
	for _, f := range in.Files {
		if f == in.GlobalPath {
			continue
		}
		data.LocalConfigs = append(data.LocalConfigs, ConfigFile{Path: f, Exists: true, Loaded: true})
	}
}

func collectModulesInfo(ix *modindex.Index, cache *modindex.Cache) *ModulesInfo {
	info := &ModulesInfo{
		Paths: ix.Paths(),
		TTL:   ix.TTL(),
	}
	if cache != nil {
		info.CachePath = cache.Path()
		info.CacheEntries = cache.Len()
		if info.CachePath != "" {
			if st, err := os.Stat(info.CachePath); err == nil {
				info.CacheSize = st.Size()
			}
		}
	}
	if entry, ok := ix.CacheEntry(); ok {
		info.Cached = true
		info.CacheUpdated = entry.Timestamp
		info.CacheModules = len(entry.Modules)
		info.CacheFresh = entry.Version == version.Version && entry.Fresh(info.TTL, time.Now())
	}
	return info
}
