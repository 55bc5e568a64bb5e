package storage

import (
	"context"
	"fmt"

	"newsflow/internal/config"
)

// FileSource serves topics and subscribers from the topics YAML file, so
// the pipeline runs without a database.
type FileSource struct {
	topics []config.Topic
}

var _ TopicSource = (*FileSource)(nil)

func NewFileSource(topics []config.Topic) *FileSource {
	return &FileSource{topics: topics}
}

func (f *FileSource) Topics(_ context.Context) ([]Topic, error) {
	out := make([]Topic, 0, len(f.topics))
	for _, t := range f.topics {
		out = append(out, Topic{ID: t.ID, Name: t.Name, Keywords: t.Keywords})
	}
	return out, nil
}

func (f *FileSource) ActiveSubscribers(_ context.Context, topicID int) ([]string, error) {
	for _, t := range f.topics {
		if t.ID == topicID {
			return t.Subscribers, nil
		}
	}
	return nil, fmt.Errorf("unknown topic id %d", topicID)
}
