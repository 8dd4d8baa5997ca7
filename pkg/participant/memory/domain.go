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

// Package memory implements an in-process publish/subscribe domain and a
// participant that bridges it.
//
// A Domain plays the role of a DDS domain: applications publish and subscribe
// on it, and every endpoint is announced to the domain's watchers. A
// Participant joins a domain and exposes it to the pipe.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/ddspipe/ddspipe/pkg/dds"
	"github.com/ddspipe/ddspipe/pkg/log"
)

// Sample is a publication delivered to a subscriber. Data is only valid for
// the duration of the callback.
type Sample struct {
	Topic     dds.TopicKey
	Data      []byte
	Source    dds.GUID
	Timestamp time.Time
}

type subscriber struct {
	guid    dds.GUID
	topic   dds.Topic
	deliver func(Sample)
}

type watcher struct {
	id int
	fn func(dds.Endpoint)
}

// Domain is an in-process data space. It is safe for concurrent use.
type Domain struct {
	name string

	mtx         sync.RWMutex
	endpoints   map[dds.GUID]dds.Endpoint
	subscribers map[dds.TopicKey]map[dds.GUID]*subscriber
	watchers    []watcher
	nextWatcher int
	nextPrefix  int
	nextEntity  uint32
}

// NewDomain creates an empty domain.
func NewDomain(name string) *Domain {
	return &Domain{
		name:        name,
		endpoints:   make(map[dds.GUID]dds.Endpoint),
		subscribers: make(map[dds.TopicKey]map[dds.GUID]*subscriber),
	}
}

func (d *Domain) Name() string {
	return d.name
}

// NewPrefix returns a GUID prefix that is unique in the domain.
func (d *Domain) NewPrefix() string {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	d.nextPrefix++
	return fmt.Sprintf("%s.%d", d.name, d.nextPrefix)
}

// Watch calls fn for every endpoint currently in the domain and afterwards
// for every endpoint that appears or disappears. Disappearing endpoints are
// reported with Active set to false. The returned function stops watching.
func (d *Domain) Watch(fn func(dds.Endpoint)) func() {
	d.mtx.Lock()
	d.nextWatcher++
	id := d.nextWatcher
	d.watchers = append(d.watchers, watcher{id: id, fn: fn})
	current := make([]dds.Endpoint, 0, len(d.endpoints))
	for _, ep := range d.endpoints {
		current = append(current, ep)
	}
	d.mtx.Unlock()
	for _, ep := range current {
		fn(ep)
	}
	return func() {
		d.mtx.Lock()
		defer d.mtx.Unlock()
		for i, w := range d.watchers {
			if w.id == id {
				d.watchers = append(d.watchers[:i], d.watchers[i+1:]...)
				return
			}
		}
	}
}

func (d *Domain) add(prefix string, topic dds.Topic, kind dds.EndpointKind,
	deliver func(Sample)) dds.GUID {

	d.mtx.Lock()
	d.nextEntity++
	guid := dds.GUID{Prefix: prefix, Entity: d.nextEntity}
	ep := dds.Endpoint{GUID: guid, Topic: topic, Kind: kind, Active: true}
	d.endpoints[guid] = ep
	if kind == dds.ReaderEndpoint {
		subs, ok := d.subscribers[topic.Key()]
		if !ok {
			subs = make(map[dds.GUID]*subscriber)
			d.subscribers[topic.Key()] = subs
		}
		subs[guid] = &subscriber{guid: guid, topic: topic, deliver: deliver}
	}
	watchers := append([]watcher(nil), d.watchers...)
	d.mtx.Unlock()

	for _, w := range watchers {
		w.fn(ep)
	}
	return guid
}

func (d *Domain) remove(guid dds.GUID) {
	d.mtx.Lock()
	ep, ok := d.endpoints[guid]
	if !ok {
		d.mtx.Unlock()
		return
	}
	delete(d.endpoints, guid)
	if subs, ok := d.subscribers[ep.Topic.Key()]; ok {
		delete(subs, guid)
		if len(subs) == 0 {
			delete(d.subscribers, ep.Topic.Key())
		}
	}
	watchers := append([]watcher(nil), d.watchers...)
	d.mtx.Unlock()

	ep.Active = false
	for _, w := range watchers {
		w.fn(ep)
	}
}

// publish delivers data to every subscriber of the topic, synchronously and
// in no particular order.
func (d *Domain) publish(source dds.GUID, topic dds.TopicKey, data []byte, ts time.Time) {
	d.mtx.RLock()
	subs := make([]*subscriber, 0, len(d.subscribers[topic]))
	for _, s := range d.subscribers[topic] {
		subs = append(subs, s)
	}
	d.mtx.RUnlock()

	sample := Sample{Topic: topic, Data: data, Source: source, Timestamp: ts}
	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error("Subscriber panicked", "topic", topic, "subscriber", s.guid,
						"panic", r)
				}
			}()
			s.deliver(sample)
		}()
	}
}

// Publisher is an application writer on a domain.
type Publisher struct {
	domain *Domain
	guid   dds.GUID
	topic  dds.Topic
}

// NewPublisher announces an application writer for topic.
func (d *Domain) NewPublisher(topic dds.Topic) *Publisher {
	p := &Publisher{domain: d, topic: topic}
	p.guid = d.add("app."+d.NewPrefix(), topic, dds.WriterEndpoint, nil)
	return p
}

func (p *Publisher) GUID() dds.GUID {
	return p.guid
}

// Publish sends data to all subscribers of the topic.
func (p *Publisher) Publish(data []byte) {
	p.domain.publish(p.guid, p.topic.Key(), data, time.Now())
}

// Close withdraws the publisher from the domain.
func (p *Publisher) Close() {
	p.domain.remove(p.guid)
}

// Subscription is an application reader on a domain.
type Subscription struct {
	domain *Domain
	guid   dds.GUID
}

// Subscribe announces an application reader for topic. fn is called for every
// publication on the topic.
func (d *Domain) Subscribe(topic dds.Topic, fn func(Sample)) *Subscription {
	s := &Subscription{domain: d}
	s.guid = d.add("app."+d.NewPrefix(), topic, dds.ReaderEndpoint, fn)
	return s
}

func (s *Subscription) GUID() dds.GUID {
	return s.guid
}

// Close withdraws the subscription from the domain.
func (s *Subscription) Close() {
	s.domain.remove(s.guid)
}
