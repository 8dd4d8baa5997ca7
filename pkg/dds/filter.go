// Copyright 2026 The ddspipe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dds

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/golang-lru/arc/v2"

	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

// DefaultFilterCacheSize is the number of topic decisions an AllowedTopicList
// remembers.
const DefaultFilterCacheSize = 1024

// sep replaces '/' in names and patterns before matching, so that wildcards
// also cover the slashes used in ROS 2 style topic names.
const sep = "\x1f"

// TopicFilter matches topics by name and type. Both fields support the
// wildcards '*' and '?'. An empty field matches everything.
type TopicFilter struct {
	Name string
	Type string
}

// Validate checks that both patterns are well formed.
func (f TopicFilter) Validate() error {
	for _, p := range []string{f.Name, f.Type} {
		if p != "" && !doublestar.ValidatePattern(escape(p)) {
			return serrors.New("invalid topic filter pattern", "pattern", p)
		}
	}
	return nil
}

// Matches reports whether the topic matches the filter.
func (f TopicFilter) Matches(t TopicKey) bool {
	return match(f.Name, t.Name) && match(f.Type, t.Type)
}

func match(pattern, s string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(escape(pattern), escape(s))
	return err == nil && ok
}

func escape(s string) string {
	return strings.ReplaceAll(s, "/", sep)
}

// AllowedTopicList decides whether a topic may be forwarded. A topic is
// allowed if it matches no blocklist filter and either the allowlist is empty
// or the topic matches at least one allowlist filter.
//
// An AllowedTopicList is immutable; reloading builds a new one. It is safe for
// concurrent use.
type AllowedTopicList struct {
	allow []TopicFilter
	block []TopicFilter
	cache *arc.ARCCache[TopicKey, bool]
}

// NewAllowedTopicList validates the filters and creates the list.
func NewAllowedTopicList(allow, block []TopicFilter) (*AllowedTopicList, error) {
	for _, f := range append(append([]TopicFilter(nil), allow...), block...) {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	cache, err := arc.NewARC[TopicKey, bool](DefaultFilterCacheSize)
	if err != nil {
		return nil, serrors.Wrap("creating topic decision cache", err)
	}
	return &AllowedTopicList{
		allow: append([]TopicFilter(nil), allow...),
		block: append([]TopicFilter(nil), block...),
		cache: cache,
	}, nil
}

// IsAllowed reports whether t passes the lists.
func (l *AllowedTopicList) IsAllowed(t TopicKey) bool {
	if v, ok := l.cache.Get(t); ok {
		return v
	}
	v := l.decide(t)
	l.cache.Add(t, v)
	return v
}

func (l *AllowedTopicList) decide(t TopicKey) bool {
	for _, f := range l.block {
		if f.Matches(t) {
			return false
		}
	}
	if len(l.allow) == 0 {
		return true
	}
	for _, f := range l.allow {
		if f.Matches(t) {
			return true
		}
	}
	return false
}

// Allowlist returns a copy of the allowlist.
func (l *AllowedTopicList) Allowlist() []TopicFilter {
	return append([]TopicFilter(nil), l.allow...)
}

// Blocklist returns a copy of the blocklist.
func (l *AllowedTopicList) Blocklist() []TopicFilter {
	return append([]TopicFilter(nil), l.block...)
}
