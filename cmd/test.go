package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/disha/internal/discovery"
	"github.com/abhisek/disha/internal/roadmap"
	"github.com/abhisek/disha/internal/store"
	"github.com/abhisek/disha/internal/testgen"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Take the current skill's test",
}

var testStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Generate the test for the current skill",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		a, err := s.LoadAggregate(cmd.Context())
		if err != nil {
			return fmt.Errorf("load roadmap: %w", err)
		}
		if a == nil {
			return fmt.Errorf("no roadmap exists; run 'disha init' first")
		}

		skill := a.CurrentSkill()
		if skill == nil || (skill.State != roadmap.StateTested && skill.State != roadmap.StateRetesting) {
			return fmt.Errorf("no skill is ready for a test; finish the scheduled tasks first")
		}

		// An open attempt is re-printed rather than regenerated, so an
		// interrupted session never burns a fresh test.
		latest, err := s.LatestAssessment(cmd.Context(), a.ID, skill.Slug)
		if err != nil {
			return err
		}
		if latest != nil && latest.SubmittedAt == nil {
			questions, err := decodeQuestions(latest.QuestionsJSON)
			if err != nil {
				return err
			}
			fmt.Printf("Resuming open attempt %d for %s.\n\n", latest.Attempt, skill.Name)
			printQuestions(questions)
			return nil
		}

		provider, err := newLLMProvider(cmd.Context(), s)
		if err != nil {
			return err
		}

		questions, err := testgen.NewGenerator(provider).Generate(
			cmd.Context(), skill, selectedTopics(cmd, s, a.ID, skill.Slug))
		if err != nil {
			return err
		}

		questionsJSON, err := json.Marshal(questions)
		if err != nil {
			return fmt.Errorf("encode questions: %w", err)
		}
		key := make([]int, len(questions))
		for i, q := range questions {
			key[i] = q.CorrectIndex
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("encode answer key: %w", err)
		}

		attempt := 1
		if latest != nil {
			attempt = latest.Attempt + 1
		}
		if err := s.CreateAssessment(cmd.Context(), &store.Assessment{
			ID:            uuid.NewString(),
			RoadmapID:     a.ID,
			SkillSlug:     skill.Slug,
			Attempt:       attempt,
			QuestionsJSON: string(questionsJSON),
			AnswerKeyJSON: string(keyJSON),
			CreatedAt:     time.Now().UTC(),
		}); err != nil {
			return err
		}

		fmt.Printf("%s test, attempt %d. Pass mark: %.0f%%.\n\n", skill.Name, attempt, testgen.PassThresholdPercent)
		printQuestions(questions)
		return nil
	},
}

var testSubmitCmd = &cobra.Command{
	Use:   "submit <answers>",
	Short: "Submit answers as comma-separated letters, e.g. a,c,b,d,...",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		a, err := s.LoadAggregate(cmd.Context())
		if err != nil {
			return fmt.Errorf("load roadmap: %w", err)
		}
		if a == nil {
			return fmt.Errorf("no roadmap exists; run 'disha init' first")
		}
		skill := a.CurrentSkill()
		if skill == nil {
			return fmt.Errorf("no skill has an open test")
		}

		latest, err := s.LatestAssessment(cmd.Context(), a.ID, skill.Slug)
		if err != nil {
			return err
		}
		if latest == nil || latest.SubmittedAt != nil {
			return fmt.Errorf("no open attempt; run 'disha test start' first")
		}

		questions, err := decodeQuestions(latest.QuestionsJSON)
		if err != nil {
			return err
		}
		answers, err := parseAnswers(args[0], len(questions))
		if err != nil {
			return err
		}

		report, err := testgen.Grade(questions, answers)
		if err != nil {
			return err
		}

		answersJSON, err := json.Marshal(answers)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
		weakJSON, err := json.Marshal(report.WeakTopics)
		if err != nil {
			return fmt.Errorf("encode weak topics: %w", err)
		}
		if err := s.SubmitAssessment(cmd.Context(), latest.ID, string(answersJSON),
			report.ScorePercent, report.Passed, string(weakJSON), time.Now().UTC()); err != nil {
			return err
		}

		out, err := newReplanner(s).HandleTestResult(cmd.Context(), report.Result(skill.Slug))
		if err != nil {
			return err
		}

		fmt.Printf("Score: %.0f%%\n", report.ScorePercent)
		for _, ts := range report.Topics {
			fmt.Printf("  %-24s %d/%d\n", ts.Topic, ts.Correct, ts.Total)
		}
		if report.Passed {
			fmt.Printf("\nPassed. %s is complete.\n", skill.Name)
			for _, tr := range out.Transitions {
				if tr.Trigger == "predecessor-passed" {
					fmt.Printf("Next up: %s. Run 'disha playlists'.\n", tr.Skill)
				}
			}
		} else {
			fmt.Printf("\nNot passed. Weak topics queued for revision:\n")
			for _, w := range report.WeakTopics {
				fmt.Printf("  %s (videos %d-%d)\n", w.Topic, w.Range.Start, w.Range.End)
			}
		}
		return nil
	},
}

// selectedTopics pulls the chosen playlist's topic list out of its
// stored summary. Missing data degrades to skill-name-only topics.
func selectedTopics(cmd *cobra.Command, s *store.Store, roadmapID, skillSlug string) []string {
	recs, err := s.ListRecommendations(cmd.Context(), roadmapID, skillSlug)
	if err != nil {
		return nil
	}
	for _, rec := range recs {
		if !rec.Selected || rec.SummaryJSON == "" {
			continue
		}
		var summary discovery.Summary
		if err := json.Unmarshal([]byte(rec.SummaryJSON), &summary); err == nil {
			return summary.TopicsCoveredSummary
		}
	}
	return nil
}

func decodeQuestions(questionsJSON string) ([]testgen.Question, error) {
	var questions []testgen.Question
	if err := json.Unmarshal([]byte(questionsJSON), &questions); err != nil {
		return nil, fmt.Errorf("decode stored questions: %w", err)
	}
	return questions, nil
}

func printQuestions(questions []testgen.Question) {
	letters := []string{"a", "b", "c", "d"}
	for i, q := range questions {
		fmt.Printf("%2d. [%s] %s\n", i+1, q.Topic, q.Prompt)
		for j, opt := range q.Options {
			fmt.Printf("      %s) %s\n", letters[j], opt)
		}
		fmt.Println()
	}
	fmt.Println("Submit with 'disha test submit a,b,c,...' (one letter per question).")
}

// parseAnswers accepts comma-separated letters (a-d) or indices (0-3).
func parseAnswers(input string, want int) ([]int, error) {
	parts := strings.Split(input, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d answers, got %d", want, len(parts))
	}
	answers := make([]int, len(parts))
	for i, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p >= "a" && p <= "d" && len(p) == 1:
			answers[i] = int(p[0] - 'a')
		default:
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n > 3 {
				return nil, fmt.Errorf("answer %d: %q is not a-d or 0-3", i+1, p)
			}
			answers[i] = n
		}
	}
	return answers, nil
}

func init() {
	testCmd.AddCommand(testStartCmd)
	testCmd.AddCommand(testSubmitCmd)
}
