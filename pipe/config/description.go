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

package config

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ddspipe/ddspipe/pipe"
	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
	"github.com/ddspipe/ddspipe/pkg/routes"
)

// Participant kinds.
const (
	KindMemory = "memory"
	KindEcho   = "echo"
	KindBlank  = "blank"
)

// Description is the pipe description: the participants, the topics and the
// routes between the participants.
type Description struct {
	Participants  []ParticipantDesc `yaml:"participants"`
	Allowlist     []FilterDesc      `yaml:"allowlist,omitempty"`
	Blocklist     []FilterDesc      `yaml:"blocklist,omitempty"`
	BuiltinTopics []TopicDesc       `yaml:"builtin_topics,omitempty"`
	Routes        []RouteDesc       `yaml:"routes,omitempty"`
	TopicRoutes   []TopicRoutesDesc `yaml:"topic_routes,omitempty"`
	// Topics are QoS rules. The first rule whose filter matches a topic
	// overrides its admission settings.
	Topics []QoSRuleDesc `yaml:"topics,omitempty"`
}

// ParticipantDesc describes one participant.
type ParticipantDesc struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Repeater bool    `yaml:"repeater,omitempty"`
	QoS      QoSDesc `yaml:"qos,omitempty"`
	// Domain is the in-process domain of a memory participant.
	Domain string    `yaml:"domain,omitempty"`
	Echo   *EchoDesc `yaml:"echo,omitempty"`
}

// EchoDesc configures an echo participant.
type EchoDesc struct {
	Data      bool `yaml:"data"`
	Discovery bool `yaml:"discovery"`
	Verbose   bool `yaml:"verbose,omitempty"`
}

// FilterDesc is a topic filter. Both patterns accept the wildcards '*' and
// '?'.
type FilterDesc struct {
	Name string `yaml:"name,omitempty"`
	Type string `yaml:"type,omitempty"`
}

// TopicDesc describes a builtin topic.
type TopicDesc struct {
	Name string  `yaml:"name"`
	Type string  `yaml:"type"`
	Kind string  `yaml:"kind,omitempty"`
	QoS  QoSDesc `yaml:"qos,omitempty"`
}

// RouteDesc lets the readers of Src forward to the writers of Dst.
type RouteDesc struct {
	Src string   `yaml:"src"`
	Dst []string `yaml:"dst"`
}

// TopicRoutesDesc are the routes of a single topic.
type TopicRoutesDesc struct {
	Name   string      `yaml:"name"`
	Type   string      `yaml:"type"`
	Routes []RouteDesc `yaml:"routes"`
}

// QoSRuleDesc overrides the admission settings of the matching topics.
type QoSRuleDesc struct {
	Name string  `yaml:"name,omitempty"`
	Type string  `yaml:"type,omitempty"`
	QoS  QoSDesc `yaml:"qos"`
}

// QoSDesc is a topic QoS. Unset fields keep their zero value.
type QoSDesc struct {
	Durability   string   `yaml:"durability,omitempty"`
	Reliability  string   `yaml:"reliability,omitempty"`
	Ownership    string   `yaml:"ownership,omitempty"`
	HistoryDepth uint32   `yaml:"history_depth,omitempty"`
	Keyed        bool     `yaml:"keyed,omitempty"`
	Partitions   []string `yaml:"partitions,omitempty"`
	Downsampling uint32   `yaml:"downsampling,omitempty"`
	MaxRxRate    float64  `yaml:"max_rx_rate,omitempty"`
	MaxTxRate    float64  `yaml:"max_tx_rate,omitempty"`
}

// ParseDescription parses a YAML pipe description and validates it.
func ParseDescription(raw []byte) (*Description, error) {
	d := &Description{}
	if err := yaml.UnmarshalStrict(raw, d); err != nil {
		return nil, serrors.Wrap("parsing pipe description", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDescription loads the pipe description from file.
func LoadDescription(file string) (*Description, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, serrors.Wrap("reading pipe description", err, "file", file)
	}
	d, err := ParseDescription(raw)
	if err != nil {
		return nil, serrors.WrapNoStack("loading pipe description", err, "file", file)
	}
	return d, nil
}

// Validate checks the description for consistency.
func (d *Description) Validate() error {
	if len(d.Participants) == 0 {
		return serrors.New("no participants")
	}
	seen := make(map[string]struct{}, len(d.Participants))
	for _, p := range d.Participants {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := seen[p.ID]; ok {
			return serrors.New("duplicate participant", "id", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	if _, err := d.AllowedTopics(); err != nil {
		return err
	}
	if _, err := d.Builtin(); err != nil {
		return err
	}
	if _, err := d.QoSRules(); err != nil {
		return err
	}
	if err := uniqueSources(d.Routes); err != nil {
		return serrors.Wrap("invalid routes", err)
	}
	topics := make(map[dds.TopicKey]struct{}, len(d.TopicRoutes))
	for _, t := range d.TopicRoutes {
		key := dds.TopicKey{Name: t.Name, Type: t.Type}
		if _, ok := topics[key]; ok {
			return serrors.New("duplicate topic routes", "topic", key)
		}
		topics[key] = struct{}{}
		if err := uniqueSources(t.Routes); err != nil {
			return serrors.Wrap("invalid topic routes", err, "topic", key)
		}
	}
	repeaters := d.Repeaters()
	if err := d.RoutesConfig().Validate(repeaters); err != nil {
		return serrors.Wrap("invalid routes", err)
	}
	if err := d.TopicRoutesConfig().Validate(repeaters); err != nil {
		return serrors.Wrap("invalid topic routes", err)
	}
	return nil
}

// Validate checks a single participant description.
func (p ParticipantDesc) Validate() error {
	if p.ID == "" {
		return serrors.New("participant without id")
	}
	switch p.Kind {
	case KindMemory:
		if p.Domain == "" {
			return serrors.New("memory participant without domain", "id", p.ID)
		}
	case KindEcho, KindBlank:
		if p.Domain != "" {
			return serrors.New("domain set on participant without domain", "id", p.ID,
				"kind", p.Kind)
		}
	default:
		return serrors.New("unknown participant kind", "id", p.ID, "kind", p.Kind)
	}
	if p.Echo != nil && p.Kind != KindEcho {
		return serrors.New("echo settings on non echo participant", "id", p.ID)
	}
	if _, err := p.QoS.TopicQoS(); err != nil {
		return serrors.WrapNoStack("invalid participant qos", err, "id", p.ID)
	}
	return nil
}

// Repeaters maps every participant to whether it is a repeater.
func (d *Description) Repeaters() routes.Participants {
	r := make(routes.Participants, len(d.Participants))
	for _, p := range d.Participants {
		r[dds.ParticipantID(p.ID)] = p.Repeater
	}
	return r
}

// AllowedTopics builds the allowed topic list.
func (d *Description) AllowedTopics() (*dds.AllowedTopicList, error) {
	l, err := dds.NewAllowedTopicList(filters(d.Allowlist), filters(d.Blocklist))
	if err != nil {
		return nil, serrors.Wrap("invalid topic lists", err)
	}
	return l, nil
}

// Builtin returns the builtin topics.
func (d *Description) Builtin() ([]dds.Topic, error) {
	var topics []dds.Topic
	for _, t := range d.BuiltinTopics {
		topic, err := t.Topic()
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// Topic converts the description to a topic. The kind defaults to dds.
func (t TopicDesc) Topic() (dds.Topic, error) {
	topic := dds.Topic{Name: t.Name, Type: t.Type}
	switch t.Kind {
	case "", "dds":
		topic.Kind = dds.KindDDS
	case "rpc":
		topic.Kind = dds.KindRPC
	default:
		return dds.Topic{}, serrors.New("unknown topic kind", "topic", t.Name, "kind", t.Kind)
	}
	if t.Type == "" {
		return dds.Topic{}, serrors.New("builtin topic without type", "topic", t.Name)
	}
	qos, err := t.QoS.TopicQoS()
	if err != nil {
		return dds.Topic{}, serrors.WrapNoStack("invalid topic qos", err, "topic", t.Name)
	}
	topic.QoS = qos
	if err := topic.Validate(); err != nil {
		return dds.Topic{}, err
	}
	return topic, nil
}

// QoSRules returns the per topic QoS rules in order.
func (d *Description) QoSRules() ([]pipe.QoSRule, error) {
	var rules []pipe.QoSRule
	for _, r := range d.Topics {
		f := dds.TopicFilter{Name: r.Name, Type: r.Type}
		if err := f.Validate(); err != nil {
			return nil, err
		}
		qos, err := r.QoS.TopicQoS()
		if err != nil {
			return nil, serrors.WrapNoStack("invalid topic qos", err, "topic", r.Name)
		}
		rules = append(rules, pipe.QoSRule{Filter: f, QoS: qos})
	}
	return rules, nil
}

// RoutesConfig returns the generic routes.
func (d *Description) RoutesConfig() routes.Configuration {
	return routesConfig(d.Routes)
}

// TopicRoutesConfig returns the topic specific routes.
func (d *Description) TopicRoutesConfig() routes.TopicConfiguration {
	if len(d.TopicRoutes) == 0 {
		return nil
	}
	c := make(routes.TopicConfiguration, len(d.TopicRoutes))
	for _, t := range d.TopicRoutes {
		c[dds.TopicKey{Name: t.Name, Type: t.Type}] = routesConfig(t.Routes)
	}
	return c
}

// Reload returns the part of the description the pipe reloads at runtime.
func (d *Description) Reload() (pipe.Reload, error) {
	allowed, err := d.AllowedTopics()
	if err != nil {
		return pipe.Reload{}, err
	}
	return pipe.Reload{
		AllowedTopics: allowed,
		Routes:        d.RoutesConfig(),
		TopicRoutes:   d.TopicRoutesConfig(),
	}, nil
}

// TopicQoS converts the description to a topic QoS.
func (q QoSDesc) TopicQoS() (dds.TopicQoS, error) {
	qos := dds.TopicQoS{
		HistoryDepth: q.HistoryDepth,
		Keyed:        q.Keyed,
		Partitions:   q.Partitions,
		Downsampling: q.Downsampling,
		MaxRxRate:    q.MaxRxRate,
		MaxTxRate:    q.MaxTxRate,
	}
	switch q.Durability {
	case "", dds.Volatile.String():
	case dds.TransientLocal.String():
		qos.Durability = dds.TransientLocal
	default:
		return dds.TopicQoS{}, serrors.New("unknown durability", "durability", q.Durability)
	}
	switch q.Reliability {
	case "", dds.BestEffort.String():
	case dds.Reliable.String():
		qos.Reliability = dds.Reliable
	default:
		return dds.TopicQoS{}, serrors.New("unknown reliability", "reliability", q.Reliability)
	}
	switch q.Ownership {
	case "", dds.Shared.String():
	case dds.Exclusive.String():
		qos.Ownership = dds.Exclusive
	default:
		return dds.TopicQoS{}, serrors.New("unknown ownership", "ownership", q.Ownership)
	}
	if err := qos.Validate(); err != nil {
		return dds.TopicQoS{}, err
	}
	return qos, nil
}

func uniqueSources(descs []RouteDesc) error {
	seen := make(map[string]struct{}, len(descs))
	for _, r := range descs {
		if _, ok := seen[r.Src]; ok {
			return serrors.New("duplicate route source", "participant", r.Src)
		}
		seen[r.Src] = struct{}{}
	}
	return nil
}

func routesConfig(descs []RouteDesc) routes.Configuration {
	if len(descs) == 0 {
		return nil
	}
	c := make(routes.Configuration, len(descs))
	for _, r := range descs {
		set, ok := c[dds.ParticipantID(r.Src)]
		if !ok {
			set = routes.NewSet()
			c[dds.ParticipantID(r.Src)] = set
		}
		for _, dst := range r.Dst {
			set[dds.ParticipantID(dst)] = struct{}{}
		}
	}
	return c
}

func filters(descs []FilterDesc) []dds.TopicFilter {
	var f []dds.TopicFilter
	for _, d := range descs {
		f = append(f, dds.TopicFilter{Name: d.Name, Type: d.Type})
	}
	return f
}
