// Package shell implements the interactive command loop for editing the
// account list from a terminal.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/atinyakov/IdentityGrid/internal/labels"
	"github.com/atinyakov/IdentityGrid/internal/models"
	"github.com/atinyakov/IdentityGrid/internal/service"
	"github.com/atinyakov/IdentityGrid/internal/validation"
)

const helpText = `Available commands:
  add                       create an empty LOCAL account
  list                      list accounts
  show <id>                 show one account
  labels <id> <a;b;c>       set labels
  login <id> <login>        set login
  password <id>             set password (LOCAL accounts)
  type <id> LDAP|LOCAL      set account type
  validate <id>             check the account for errors
  delete <id>               remove an account
  clear                     remove all accounts
  count                     number of accounts
  exit                      leave the shell`

// Shell reads commands from in and writes results to out.
type Shell struct {
	svc     *service.AccountService
	scanner *bufio.Scanner
	out     io.Writer

	// ReadSecret reads a password without echoing it. When nil the next
	// input line is used.
	ReadSecret func() (string, error)

	// The scanner is read on its own goroutine, one line per request, so a
	// pending read never competes with ReadSecret for the terminal.
	readerOnce sync.Once
	requests   chan struct{}
	lines      chan input
}

type input struct {
	text string
	ok   bool
	err  error
}

// New creates a Shell over svc.
func New(svc *service.AccountService, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		svc:      svc,
		scanner:  bufio.NewScanner(in),
		out:      out,
		requests: make(chan struct{}),
		lines:    make(chan input, 1),
	}
}

// Run executes commands until "exit", the end of input or the cancellation
// of ctx.
func (s *Shell) Run(ctx context.Context) {
	for {
		fmt.Fprint(s.out, "grid> ")
		text, ok, _ := s.readLine(ctx)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}
		line := strings.TrimSpace(text)
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return
		}
		s.exec(ctx, args, line)
	}
}

func (s *Shell) exec(ctx context.Context, args []string, line string) {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "add":
		acc := s.svc.Create()
		fmt.Fprintf(s.out, "Account %s created\n", acc.ID)
	case "list":
		s.list()
	case "count":
		fmt.Fprintln(s.out, s.svc.Count())
	case "clear":
		s.svc.Clear()
		fmt.Fprintln(s.out, "All accounts removed")
	case "show":
		if acc, ok := s.account(args, "show <id>"); ok {
			s.show(acc)
		}
	case "labels":
		if acc, ok := s.account(args, "labels <id> <a;b;c>"); ok {
			s.setLabels(acc, rest(line, 2))
		}
	case "login":
		if len(args) < 3 {
			fmt.Fprintln(s.out, "Usage: login <id> <login>")
			return
		}
		if acc, ok := s.account(args, "login <id> <login>"); ok {
			s.setLogin(acc, rest(line, 2))
		}
	case "password":
		if acc, ok := s.account(args, "password <id>"); ok {
			s.setPassword(ctx, acc)
		}
	case "type":
		if len(args) < 3 {
			fmt.Fprintln(s.out, "Usage: type <id> LDAP|LOCAL")
			return
		}
		if acc, ok := s.account(args, "type <id> LDAP|LOCAL"); ok {
			s.setType(acc, args[2])
		}
	case "validate":
		if acc, ok := s.account(args, "validate <id>"); ok {
			s.validate(acc)
		}
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: delete <id>")
			return
		}
		if s.svc.Remove(args[1]) {
			fmt.Fprintln(s.out, "Account deleted")
		} else {
			fmt.Fprintln(s.out, "Account not found")
		}
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
}

// account resolves the id in args[1].
func (s *Shell) account(args []string, usage string) (models.Account, bool) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: "+usage)
		return models.Account{}, false
	}
	acc, ok := s.svc.Get(args[1])
	if !ok {
		fmt.Fprintln(s.out, "Account not found")
	}
	return acc, ok
}

func (s *Shell) list() {
	accs := s.svc.List()
	if len(accs) == 0 {
		fmt.Fprintln(s.out, "No accounts")
		return
	}
	for _, acc := range accs {
		fmt.Fprintf(s.out, "%s  %-5s  %-20s  %s\n", acc.ID, acc.Type, acc.Login, labels.Stringify(acc.Labels))
	}
}

func (s *Shell) show(acc models.Account) {
	form := service.FormOf(acc)
	password := "(none)"
	if form.Password != nil {
		password = strings.Repeat("*", len([]rune(*form.Password)))
	}
	fmt.Fprintf(s.out, "ID: %s\nType: %s\nLabels: %s\nLogin: %s\nPassword: %s\n",
		acc.ID, form.Type, form.LabelString, form.Login, password)
}

func (s *Shell) setLabels(acc models.Account, text string) {
	if err := validation.ValidateLabel(text); err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return
	}
	s.svc.Patch(acc.ID, models.AccountUpdate{Labels: labels.Parse(text)})
	fmt.Fprintln(s.out, "Labels updated")
}

func (s *Shell) setLogin(acc models.Account, login string) {
	if err := validation.ValidateLogin(login); err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return
	}
	s.svc.Patch(acc.ID, models.AccountUpdate{Login: models.StringPtr(login)})
	fmt.Fprintln(s.out, "Login updated")
}

func (s *Shell) setPassword(ctx context.Context, acc models.Account) {
	if !acc.Type.HasPassword() {
		fmt.Fprintln(s.out, "LDAP accounts have no password")
		return
	}
	fmt.Fprint(s.out, "Enter password: ")
	password, err := s.readSecret(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return
	}
	if err := validation.ValidatePassword(&password, acc.Type); err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return
	}
	s.svc.Patch(acc.ID, models.AccountUpdate{Password: &password})
	fmt.Fprintln(s.out, "Password updated")
}

func (s *Shell) setType(acc models.Account, value string) {
	t, ok := models.ParseAccountType(value)
	if !ok {
		fmt.Fprintln(s.out, "Error:", validation.ErrUnknownType)
		return
	}
	s.svc.Patch(acc.ID, models.AccountUpdate{Type: &t})
	fmt.Fprintf(s.out, "Type set to %s\n", t)
}

func (s *Shell) validate(acc models.Account) {
	errs := s.svc.Validate(service.FormOf(acc))
	if !errs.HasErrors() {
		fmt.Fprintln(s.out, "Account is valid")
		return
	}
	for _, f := range []validation.Field{validation.FieldLabel, validation.FieldLogin, validation.FieldPassword, validation.FieldType} {
		if msg, ok := errs[f]; ok {
			fmt.Fprintf(s.out, "%s: %s\n", f, msg)
		}
	}
}

func (s *Shell) readSecret(ctx context.Context) (string, error) {
	if s.ReadSecret == nil {
		text, ok, err := s.readLine(ctx)
		switch {
		case ok:
			return text, nil
		case err != nil:
			return "", err
		default:
			return "", io.ErrUnexpectedEOF
		}
	}

	type secret struct {
		text string
		err  error
	}
	res := make(chan secret, 1)
	go func() {
		text, err := s.ReadSecret()
		res <- secret{text, err}
	}()
	select {
	case r := <-res:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readLine returns the next input line. ok is false at the end of input or
// once ctx is cancelled; err then carries the reason, if any.
func (s *Shell) readLine(ctx context.Context) (text string, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.readerOnce.Do(func() { go s.readLines() })

	select {
	case s.requests <- struct{}{}:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	select {
	case in := <-s.lines:
		return in.text, in.ok, in.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (s *Shell) readLines() {
	for range s.requests {
		ok := s.scanner.Scan()
		s.lines <- input{text: s.scanner.Text(), ok: ok, err: s.scanner.Err()}
	}
}

// rest returns line with its first n whitespace-separated words removed.
func rest(line string, n int) string {
	for i := 0; i < n; i++ {
		line = strings.TrimLeft(line, " \t")
		idx := strings.IndexAny(line, " \t")
		if idx < 0 {
			return ""
		}
		line = line[idx:]
	}
	return strings.TrimSpace(line)
}
