package testgen

import (
	"fmt"

	"github.com/abhisek/disha/internal/roadmap"
)

// Topic mastery thresholds. A topic below weak needs revision; a topic
// at or above strong is considered settled.
const (
	weakTopicRatio   = 0.5
	strongTopicRatio = 0.8
)

// Grade scores a submitted answer sheet against the test's questions.
// Answers must have one entry per question; -1 marks an unanswered
// question and always counts as wrong.
func Grade(questions []Question, answers []int) (*Report, error) {
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("expected %d answers, got %d", len(questions), len(answers))
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions to grade")
	}

	byTopic := make(map[string]*TopicScore)
	var order []string
	correct := 0

	for i, q := range questions {
		ts, ok := byTopic[q.Topic]
		if !ok {
			ts = &TopicScore{Topic: q.Topic, Range: q.Range}
			byTopic[q.Topic] = ts
			order = append(order, q.Topic)
		}
		ts.Total++
		if answers[i] == q.CorrectIndex {
			ts.Correct++
			correct++
		}
	}

	report := &Report{
		ScorePercent: 100 * float64(correct) / float64(len(questions)),
	}
	report.Passed = report.ScorePercent >= PassThresholdPercent

	for _, topic := range order {
		ts := byTopic[topic]
		report.Topics = append(report.Topics, *ts)
		switch {
		case ts.Ratio() < weakTopicRatio:
			report.WeakTopics = append(report.WeakTopics, roadmap.WeakTopic{
				Topic: ts.Topic,
				Range: ts.Range,
			})
		case ts.Ratio() >= strongTopicRatio:
			report.StrongTopics = append(report.StrongTopics, ts.Topic)
		}
	}

	return report, nil
}
