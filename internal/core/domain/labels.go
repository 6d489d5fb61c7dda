package domain

import "sort"

// LabelSet maps topics to the documents assigned to them.
// It only grows: documents are added, never removed.
type LabelSet struct {
	topics map[string]map[string]struct{}
}

// NewLabelSet creates an empty label set.
func NewLabelSet() *LabelSet {
	return &LabelSet{topics: make(map[string]map[string]struct{})}
}

// Add assigns document to topic. Returns false if it was already assigned.
func (l *LabelSet) Add(topic, document string) bool {
	if l.topics == nil {
		l.topics = make(map[string]map[string]struct{})
	}
	members, ok := l.topics[topic]
	if !ok {
		members = make(map[string]struct{})
		l.topics[topic] = members
	}
	if _, exists := members[document]; exists {
		return false
	}
	members[document] = struct{}{}
	return true
}

// AddTopic registers a topic without members.
func (l *LabelSet) AddTopic(topic string) {
	if l.topics == nil {
		l.topics = make(map[string]map[string]struct{})
	}
	if _, ok := l.topics[topic]; !ok {
		l.topics[topic] = make(map[string]struct{})
	}
}

// Has reports whether document is assigned to topic.
func (l *LabelSet) Has(topic, document string) bool {
	_, ok := l.topics[topic][document]
	return ok
}

// Topics returns all topic names in sorted order.
func (l *LabelSet) Topics() []string {
	topics := make([]string, 0, len(l.topics))
	for t := range l.topics {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Members returns the documents assigned to topic in sorted order.
func (l *LabelSet) Members(topic string) []string {
	members := make([]string, 0, len(l.topics[topic]))
	for d := range l.topics[topic] {
		members = append(members, d)
	}
	sort.Strings(members)
	return members
}

// Size returns the number of documents assigned to topic.
func (l *LabelSet) Size(topic string) int {
	return len(l.topics[topic])
}

// Merge adds every assignment of other to l.
func (l *LabelSet) Merge(other *LabelSet) {
	if other == nil {
		return
	}
	for topic, members := range other.topics {
		l.AddTopic(topic)
		for d := range members {
			l.Add(topic, d)
		}
	}
}
