package interview

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	pkgvalidator "github.com/johnquangdev/interview-assistant/pkg/validator"
)

// QuestionBank holds the question lists used when a job brings none
type QuestionBank struct {
	Default []entities.Question            `yaml:"default"`
	Jobs    map[string][]entities.Question `yaml:"jobs"`
}

// LoadQuestionBank reads and validates a YAML question bank
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return ParseQuestionBank(data)
}

// ParseQuestionBank decodes and validates a YAML question bank
func ParseQuestionBank(data []byte) (*QuestionBank, error) {
	var bank QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	v := pkgvalidator.New()
	check := func(name string, questions []entities.Question) error {
		for i, q := range questions {
			if err := v.Validate(q); err != nil {
				return fmt.Errorf("question bank %s #%d: %w", name, i+1, err)
			}
		}
		return nil
	}
	if err := check("default", bank.Default); err != nil {
		return nil, err
	}
	for job, questions := range bank.Jobs {
		if err := check(job, questions); err != nil {
			return nil, err
		}
	}
	return &bank, nil
}

// ForJob returns the numbered questions of a job, or the default list
func (b *QuestionBank) ForJob(jobID string) []entities.Question {
	if b == nil {
		return nil
	}
	questions, ok := b.Jobs[strings.TrimSpace(jobID)]
	if !ok || len(questions) == 0 {
		questions = b.Default
	}
	return entities.NumberQuestions(questions)
}
