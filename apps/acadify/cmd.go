package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/acadify/core/academic"
	"github.com/trezcool/acadify/core/access"
	"github.com/trezcool/acadify/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	svc      *academic.Service
	sessions *session.Manager
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -role student|teacher|hod -id ID      - log in; the password is prompted next")
	fmt.Fprintln(cli.out, "  logout                                      - log out")
	fmt.Fprintln(cli.out, "  whoami                                      - show the logged in user")
	fmt.Fprintln(cli.out, "  view PATH                                   - show a page, e.g. /teacher/syllabus or /student/100001")
	fmt.Fprintln(cli.out, "  topic add -subject S -title T               - add a topic (teacher)")
	fmt.Fprintln(cli.out, "  topic toggle -subject S -id ID              - toggle a topic's completion (teacher)")
	fmt.Fprintln(cli.out, "  topic deadline -subject S -id ID -date D    - set (YYYY-MM-DD) or clear a deadline (teacher)")
	fmt.Fprintln(cli.out, "  quiz create -file draft.json                - create a quiz (teacher)")
	fmt.Fprintln(cli.out, "  quiz take -id Q -answers 0,1,...            - answer a quiz (student)")
	fmt.Fprintln(cli.out, "  feedback -rating 1..5 [-text T]             - give feedback (student)")
	fmt.Fprintln(cli.out, "  special -roll ROLL                          - toggle special attention (teacher)")
	fmt.Fprintln(cli.out, "  seed                                        - install the demo data where missing")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "login":
		return cli.runLogin(ctx, args[2:])
	case "logout":
		if err := cli.sessions.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Logged out.")
		return nil
	case "whoami":
		return cli.whoami(ctx)
	case "view":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.view(ctx, args[2])
	case "topic":
		return cli.runTopic(ctx, args[2:])
	case "quiz":
		return cli.runQuiz(ctx, args[2:])
	case "feedback":
		return cli.runFeedback(ctx, args[2:])
	case "special":
		return cli.runSpecial(ctx, args[2:])
	case "seed":
		if err := cli.svc.Seed(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Demo data ready.")
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) runLogin(ctx context.Context, args []string) error {
	loginCmd := cli.newFlagSet("login")
	loginRole := loginCmd.String("role", "", "student, teacher or hod")
	loginID := loginCmd.String("id", "", "Roll number for students, staff id otherwise. The password will be prompted next.")
	if err := loginCmd.Parse(args); err != nil {
		return err
	}
	if *loginRole == "" || *loginID == "" {
		loginCmd.Usage()
		return errHelp
	}
	role, err := session.ParseRole(*loginRole)
	if err != nil {
		return err
	}

	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		loginCmd.Usage()
		return errHelp
	}

	sess, err := cli.sessions.Login(ctx, role, *loginID, string(pwd))
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Welcome, %s. Start at %s\n", sess.Name, access.HomeRoute(sess.Role))
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	sess, err := cli.sessions.Current(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return access.ErrUnauthenticated
	}
	fmt.Fprintf(cli.out, "%s (%s %s)\n", sess.Name, sess.Role, sess.ID)
	return nil
}

// allowed returns the current session if it may perform `action`.
func (cli *commandLine) allowed(ctx context.Context, action access.Action) (*session.Session, error) {
	sess, err := cli.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err = access.Allow(sess, action); err != nil {
		return nil, err
	}
	return sess, nil
}

func (cli *commandLine) runTopic(ctx context.Context, args []string) error {
	if len(args) < 1 {
		cli.printUsage()
		return errHelp
	}

	topicCmd := cli.newFlagSet("topic " + args[0])
	subject := topicCmd.String("subject", "", "The subject name, as listed in the syllabus.")
	var (
		title, topicID, date *string
		action               access.Action
	)
	switch args[0] {
	case "add":
		title = topicCmd.String("title", "", "The new topic's title.")
		action = access.AddTopic
	case "toggle":
		topicID = topicCmd.String("id", "", "The topic id.")
		action = access.ToggleTopic
	case "deadline":
		topicID = topicCmd.String("id", "", "The topic id.")
		date = topicCmd.String("date", "", "The deadline as YYYY-MM-DD. Empty clears it.")
		action = access.SetDeadline
	default:
		cli.printUsage()
		return errHelp
	}
	if err := topicCmd.Parse(args[1:]); err != nil {
		return err
	}
	if *subject == "" || (topicID != nil && *topicID == "") {
		topicCmd.Usage()
		return errHelp
	}
	if _, err := cli.allowed(ctx, action); err != nil {
		return err
	}

	var (
		topic academic.Topic
		err   error
	)
	switch action {
	case access.AddTopic:
		topic, err = cli.svc.AddTopic(ctx, *subject, *title)
	case access.ToggleTopic:
		topic, err = cli.svc.ToggleTopicCompletion(ctx, *subject, *topicID)
	case access.SetDeadline:
		var deadline *academic.Date
		if *date != "" {
			d, perr := academic.ParseDate(*date)
			if perr != nil {
				return perr
			}
			deadline = &d
		}
		topic, err = cli.svc.SetTopicDeadline(ctx, *subject, *topicID, deadline)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %s\n", *subject, formatTopic(topic))
	return nil
}

func (cli *commandLine) runQuiz(ctx context.Context, args []string) error {
	if len(args) < 1 {
		cli.printUsage()
		return errHelp
	}

	switch args[0] {
	case "create":
		createCmd := cli.newFlagSet("quiz create")
		file := createCmd.String("file", "", "A JSON file holding {title, subject, topicId, questions: [{text, options, correctIndex}]}.")
		if err := createCmd.Parse(args[1:]); err != nil {
			return err
		}
		if *file == "" {
			createCmd.Usage()
			return errHelp
		}
		if _, err := cli.allowed(ctx, access.CreateQuiz); err != nil {
			return err
		}
		draft, err := readQuizDraft(*file)
		if err != nil {
			return err
		}
		quiz, err := cli.svc.CreateQuiz(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Created quiz %s (%s)\n", quiz.ID, quiz.Title)
		return nil

	case "take":
		takeCmd := cli.newFlagSet("quiz take")
		quizID := takeCmd.String("id", "", "The quiz id.")
		answers := takeCmd.String("answers", "", "Comma separated option numbers, one per question, starting at 0. Leave a slot empty to skip it.")
		if err := takeCmd.Parse(args[1:]); err != nil {
			return err
		}
		if *quizID == "" {
			takeCmd.Usage()
			return errHelp
		}
		sess, err := cli.allowed(ctx, access.SubmitQuiz)
		if err != nil {
			return err
		}
		parsed, err := parseAnswers(*answers)
		if err != nil {
			return err
		}
		score, err := cli.svc.SubmitQuiz(ctx, *quizID, sess.ID, parsed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Score: %d%%\n", score)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func readQuizDraft(path string) (academic.QuizDraft, error) {
	var draft academic.QuizDraft
	data, err := os.ReadFile(path)
	if err != nil {
		return draft, errors.Wrap(err, "reading quiz draft")
	}
	if err = json.Unmarshal(data, &draft); err != nil {
		return draft, errors.Wrap(err, "decoding quiz draft")
	}
	return draft, nil
}

// parseAnswers reads "0,1,,2" as question index -> option index; empty slots are unanswered.
func parseAnswers(s string) (map[int]int, error) {
	answers := make(map[int]int)
	if strings.TrimSpace(s) == "" {
		return answers, nil
	}
	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		opt, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Errorf("answer %d must be a number (got '%s')", i+1, part)
		}
		answers[i] = opt
	}
	return answers, nil
}

func (cli *commandLine) runFeedback(ctx context.Context, args []string) error {
	feedbackCmd := cli.newFlagSet("feedback")
	rating := feedbackCmd.Int("rating", 0, "A rating from 1 to 5.")
	text := feedbackCmd.String("text", "", "An optional comment.")
	if err := feedbackCmd.Parse(args); err != nil {
		return err
	}
	sess, err := cli.allowed(ctx, access.GiveFeedback)
	if err != nil {
		return err
	}
	if _, err = cli.svc.AppendFeedback(ctx, sess.ID, *rating, *text); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Thanks for your feedback.")
	return nil
}

func (cli *commandLine) runSpecial(ctx context.Context, args []string) error {
	specialCmd := cli.newFlagSet("special")
	roll := specialCmd.String("roll", "", "The student's roll number.")
	if err := specialCmd.Parse(args); err != nil {
		return err
	}
	if *roll == "" {
		specialCmd.Usage()
		return errHelp
	}
	if _, err := cli.allowed(ctx, access.ToggleSpecial); err != nil {
		return err
	}
	marked, err := cli.svc.ToggleSpecialAttention(ctx, *roll)
	if err != nil {
		return err
	}
	if marked {
		fmt.Fprintf(cli.out, "%s marked for special attention\n", *roll)
	} else {
		fmt.Fprintf(cli.out, "%s no longer needs special attention\n", *roll)
	}
	return nil
}
