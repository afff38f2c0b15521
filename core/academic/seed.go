package academic

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	firstRoll          = 100001
	studentEmailDomain = "student.local"
)

var demoStudentNames = []string{
	"Aarav Mehta", "Aditya Sharma", "Akash Gupta", "Aman Verma", "Ananya Rao", "Anjali Nair", "Arjun Khanna",
	"Bhavana Desai", "Chetan Malhotra", "Darsh Patel", "Devika Iyer", "Dhruv Saxena", "Divya Joshi", "Gaurav Bansal",
	"Harini Reddy", "Harsh Kapoor", "Ishaan Choudhary", "Jatin Arora", "Jyoti Menon", "Kabir Sethi", "Kajal Yadav",
	"Kartik Ahuja", "Kavya Kulkarni", "Kunal Joshi", "Manav Raina", "Meera Thomas", "Mihir Saxena", "Neha Bhatia",
	"Nikhil Sinha", "Nisha Paul", "Om Prakash", "Pallavi Mishra", "Pranav Tiwari", "Priya Singh", "Rahul Jain",
	"Rajesh Kumar", "Riya Banerjee", "Rohit Agarwal", "Sakshi Chauhan", "Sameer Khan", "Sanjana Pillai", "Shreya Ghosh",
	"Siddharth Nair", "Sneha Reddy", "Soumya Sharma", "Tanmay Singh", "Tanya Kapoor", "Ujjwal Tripathi", "Varun Joshi",
	"Yashika Mehta",
}

// DemoStudents builds the seeded roster: rolls from 100001, emails from the lowered first name.
func DemoStudents() []Student {
	students := make([]Student, 0, len(demoStudentNames))
	for i, name := range demoStudentNames {
		students = append(students, Student{
			Roll:  strconv.Itoa(firstRoll + i),
			Name:  name,
			Email: studentEmail(name),
		})
	}
	return students
}

func studentEmail(name string) string {
	first := strings.ToLower(strings.Fields(name)[0])
	return fmt.Sprintf("%s@%s", first, studentEmailDomain)
}

// DemoSyllabus returns the baked-in syllabus.
func DemoSyllabus() Syllabus {
	syl := NewSyllabus()
	syl.SetTopics("Introduction to Computer Science and Design", []Topic{
		{ID: "icsd-1", Title: "Basics of Computing"},
		{ID: "icsd-2", Title: "Design Thinking"},
	})
	syl.SetTopics("Computer Programming", []Topic{
		{ID: "cp-1", Title: "Intro to Programming", Completed: true},
		{ID: "cp-2", Title: "Control Flow"},
	})
	syl.SetTopics("Linear Algebra", []Topic{{ID: "la-1", Title: "Vectors & Matrices"}})
	syl.SetTopics("Cyber World and Security Concern", []Topic{{ID: "cy-1", Title: "Cyber Basics"}})
	syl.SetTopics("Digital Logic Design", []Topic{{ID: "dl-1", Title: "Boolean Algebra"}})
	syl.SetTopics("Language", []Topic{{ID: "lang-1", Title: "Communication Skills"}})
	return syl
}

// DemoQuizzes returns the baked-in sample quiz, set on the one completed demo topic.
func DemoQuizzes() []Quiz {
	return []Quiz{
		{
			ID:      "q1",
			Title:   "Quiz 1 - Intro to Programming",
			Subject: "Computer Programming",
			TopicID: "cp-1",
			Questions: []Question{
				{Text: "What is a variable?", Options: []string{"A container", "A function", "A loop"}, CorrectIndex: 0},
				{Text: "Which is a loop?", Options: []string{"if", "for", "return"}, CorrectIndex: 1},
			},
			Results: make(map[string]int),
		},
	}
}

// Seed installs the demo data for every collection that has never been stored.
// Existing collections are never overwritten, so calling it again is a no-op.
func (svc *Service) Seed(ctx context.Context) error {
	seeders := []struct {
		collection Collection
		save       func() error
	}{
		{CollectionStudents, func() error { return svc.repo.SaveStudents(ctx, DemoStudents()) }},
		{CollectionSyllabus, func() error { return svc.repo.SaveSyllabus(ctx, DemoSyllabus()) }},
		{CollectionQuizzes, func() error { return svc.repo.SaveQuizzes(ctx, DemoQuizzes()) }},
		{CollectionFeedback, func() error { return svc.repo.SaveFeedback(ctx, Feedback{}) }},
		{CollectionSpecialAttention, func() error { return svc.repo.SaveSpecialAttention(ctx, []string{}) }},
	}

	for _, s := range seeders {
		seeded, err := svc.seedCollection(ctx, s.collection, s.save)
		if err != nil {
			return err
		}
		if seeded {
			svc.logger.Info(fmt.Sprintf("seeded %s", s.collection))
			svc.notify(s.collection)
		}
	}
	return nil
}

func (svc *Service) seedCollection(ctx context.Context, c Collection, save func() error) (bool, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	exists, err := svc.repo.HasCollection(ctx, c)
	if err != nil {
		return false, errors.Wrapf(err, "checking %s", c)
	}
	if exists {
		return false, nil
	}
	if err = save(); err != nil {
		return false, errors.Wrapf(err, "seeding %s", c)
	}
	return true, nil
}
