// Package console is the text menu driving a lending session.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"library-lending/library"
)

// Console reads commands line by line and runs them against a session.
type Console struct {
	sc       *bufio.Scanner
	out      io.Writer
	session  *library.Session
	validate *validator.Validate

	// Interactive shows the welcome banner and the command prompt.
	Interactive bool
}

func New(in io.Reader, out io.Writer, session *library.Session) *Console {
	return &Console{
		sc:       bufio.NewScanner(in),
		out:      out,
		session:  session,
		validate: validator.New(),
	}
}

// Run loops until "exit" or end of input. Pending notifications are printed
// after every command.
func (c *Console) Run() error {
	if c.Interactive {
		c.banner()
	}

	for {
		if c.Interactive {
			c.printf("\n> ")
		}
		if !c.sc.Scan() {
			break
		}
		cmd := strings.ToLower(strings.TrimSpace(c.sc.Text()))
		if cmd == "" {
			continue
		}

		switch cmd {
		case "search":
			c.handleSearch()
		case "add book":
			c.handleAddBook()
		case "add magazine":
			c.handleAddMagazine()
		case "remove book":
			c.handleRemove(library.KindBook)
		case "remove magazine":
			c.handleRemove(library.KindMagazine)
		case "add user":
			c.handleAddUser()
		case "remove user":
			c.handleRemoveUser()
		case "borrow":
			c.handleBorrow()
		case "return":
			c.handleReturn()
		case "remind":
			c.handleRemind()
		case "list books":
			c.handleListItems(c.session.Books)
		case "list magazines":
			c.handleListItems(c.session.Magazines)
		case "list users":
			c.handleListUsers()
		case "list loans":
			c.handleListLoans()
		case "loan history":
			c.handleLoanHistory()
		case "search history":
			c.handleSearchHistory()
		case "help":
			c.help()
		case "exit":
			c.printf("Goodbye!\n")
			c.flushNotifications()
			return nil
		default:
			c.printf("Unknown command. Type 'help' to see the available commands.\n")
		}

		c.flushNotifications()
	}
	return c.sc.Err()
}

func (c *Console) banner() {
	c.printf("Welcome to the Library Lending System!\n")
	c.help()
}

func (c *Console) help() {
	c.printf("Available commands:\n")
	c.printf("  Catalog: search, add book, add magazine, remove book, remove magazine, list books, list magazines\n")
	c.printf("  Users: add user, remove user, list users\n")
	c.printf("  Circulation: borrow, return, remind, list loans, loan history\n")
	c.printf("  System: search history, help, exit\n")
}

func (c *Console) flushNotifications() {
	for _, msg := range c.session.DrainNotifications() {
		c.printf("%s\n", msg)
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// ask prints prompt and returns the trimmed answer. ok is false at end of input.
func (c *Console) ask(prompt string) (string, bool) {
	c.printf("%s", prompt)
	if !c.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.sc.Text()), true
}

// askInt is ask plus integer parsing; bad numbers are reported here.
func (c *Console) askInt(prompt, what string) (int, bool) {
	raw, ok := c.ask(prompt)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.printf("Invalid %s: %s\n", what, raw)
		return 0, false
	}
	return n, true
}

func (c *Console) handleSearch() {
	term, ok := c.ask("Title: ")
	if !ok {
		return
	}
	item, err := c.session.SearchItem(term)
	switch {
	case errors.Is(err, library.ErrEmptyTerm):
		c.printf("No search term entered.\n")
	case err != nil:
		c.printf("Item not found.\n")
	case item.Kind() == library.KindBook:
		c.printf("Book found: %s\n", item)
	default:
		c.printf("Magazine found: %s\n", item)
	}
}

func (c *Console) handleAddBook() {
	var in bookInput
	var ok bool
	if in.ID, ok = c.askInt("ID: ", "item ID"); !ok {
		return
	}
	if in.Title, ok = c.ask("Title: "); !ok {
		return
	}
	if in.Year, ok = c.askInt("Publication year: ", "year"); !ok {
		return
	}
	if in.Author, ok = c.ask("Author: "); !ok {
		return
	}
	if in.Genre, ok = c.ask("Genre: "); !ok {
		return
	}
	if err := c.validate.Struct(in); err != nil {
		c.printf("Invalid book: %s\n", describe(err))
		return
	}

	if err := c.session.AddBook(in.build()); err != nil {
		c.printf("Error adding book: %v\n", err)
		return
	}
	c.printf("Item added: %s\n", in.Title)
}

func (c *Console) handleAddMagazine() {
	var in magazineInput
	var ok bool
	if in.ID, ok = c.askInt("ID: ", "item ID"); !ok {
		return
	}
	if in.Title, ok = c.ask("Title: "); !ok {
		return
	}
	if in.Year, ok = c.askInt("Publication year: ", "year"); !ok {
		return
	}
	if in.Edition, ok = c.askInt("Edition number: ", "edition number"); !ok {
		return
	}
	if in.Topics, ok = c.ask("Topics: "); !ok {
		return
	}
	if err := c.validate.Struct(in); err != nil {
		c.printf("Invalid magazine: %s\n", describe(err))
		return
	}

	if err := c.session.AddMagazine(in.build()); err != nil {
		c.printf("Error adding magazine: %v\n", err)
		return
	}
	c.printf("Item added: %s\n", in.Title)
}

func (c *Console) handleRemove(kind library.Kind) {
	noun := "Book"
	remove := c.session.RemoveBook
	if kind == library.KindMagazine {
		noun = "Magazine"
		remove = c.session.RemoveMagazine
	}

	title, ok := c.ask(fmt.Sprintf("Title of the %s to remove: ", strings.ToLower(noun)))
	if !ok {
		return
	}
	if _, err := remove(title); err != nil {
		c.printf("%s not found.\n", noun)
		return
	}
	c.printf("%s removed.\n", noun)
}

func (c *Console) handleAddUser() {
	var in userInput
	var ok bool
	if in.ID, ok = c.askInt("User ID: ", "user ID"); !ok {
		return
	}
	if in.Name, ok = c.ask("Name: "); !ok {
		return
	}
	if in.Email, ok = c.ask("Email: "); !ok {
		return
	}
	if in.Max, ok = c.askInt("Maximum borrowed items: ", "maximum"); !ok {
		return
	}
	if err := c.validate.Struct(in); err != nil {
		c.printf("Invalid user: %s\n", describe(err))
		return
	}

	if err := c.session.RegisterUser(in.build()); err != nil {
		if errors.Is(err, library.ErrDuplicateUser) {
			c.printf("The user with ID %d already exists.\n", in.ID)
		} else {
			c.printf("Error adding user: %v\n", err)
		}
		return
	}
	c.printf("User added: %s\n", in.Name)
}

func (c *Console) handleRemoveUser() {
	id, ok := c.askInt("User ID: ", "user ID")
	if !ok {
		return
	}
	user, err := c.session.RemoveUser(id)
	if err != nil {
		c.printf("User not found.\n")
		return
	}
	c.printf("User removed: %s\n", user.Name)
}

func (c *Console) handleBorrow() {
	id, ok := c.askInt("User ID: ", "user ID")
	if !ok {
		return
	}
	title, ok := c.ask("Title: ")
	if !ok {
		return
	}

	loan, err := c.session.Borrow(id, title)
	switch {
	case errors.Is(err, library.ErrUserNotFound):
		c.printf("User not found.\n")
	case errors.Is(err, library.ErrItemNotFound):
		c.printf("Item not found.\n")
	case errors.Is(err, library.ErrLimitReached):
		c.printf("Loan refused: the user has reached the borrowing limit.\n")
	case errors.Is(err, library.ErrAlreadyBorrowed):
		c.printf("Loan refused: the user already has this item.\n")
	case err != nil:
		c.printf("Error making loan: %v\n", err)
	default:
		c.printf("Loan made for: %s (due %s)\n", loan.ItemTitle, loan.DueDate.Format("2006-01-02"))
	}
}

func (c *Console) handleReturn() {
	id, ok := c.askInt("User ID: ", "user ID")
	if !ok {
		return
	}
	title, ok := c.ask("Title: ")
	if !ok {
		return
	}

	_, err := c.session.Return(id, title)
	switch {
	case errors.Is(err, library.ErrUserNotFound):
		c.printf("User not found.\n")
	case err != nil:
		c.printf("Item not found in the user's loans.\n")
	default:
		c.printf("Item successfully returned.\n")
	}
}

func (c *Console) handleRemind() {
	id, ok := c.askInt("User ID: ", "user ID")
	if !ok {
		return
	}
	if err := c.session.SendReminder(id); err != nil {
		if errors.Is(err, library.ErrUserNotFound) {
			c.printf("User not found.\n")
			return
		}
		c.printf("Error sending reminder: %v\n", err)
	}
}

func (c *Console) handleListItems(cat *library.Catalog) {
	items := cat.GetAll()
	if len(items) == 0 {
		c.printf("No %ss in the catalog.\n", cat.Kind())
		return
	}
	c.printf("%-5s %-30s %-6s %-25s\n", "ID", "Title", "Year", "Details")
	c.printf("%s\n", strings.Repeat("-", 70))
	for _, it := range items {
		c.printf("%s\n", library.PrettyItem(it))
	}
}

func (c *Console) handleListUsers() {
	users := c.session.Users.GetAll()
	if len(users) == 0 {
		c.printf("No registered users.\n")
		return
	}
	for _, u := range users {
		c.printf("%s\n", u)
	}
}

func (c *Console) handleListLoans() {
	loans := c.session.Loans.AllActiveLoans()
	if len(loans) == 0 {
		c.printf("No active loans.\n")
		return
	}
	c.printf("%-8s %-30s %-12s %-12s\n", "User", "Title", "Loaned", "Due")
	c.printf("%s\n", strings.Repeat("-", 66))
	for _, l := range loans {
		c.printf("%-8d %-30s %-12s %-12s\n", l.UserID, l.ItemTitle, l.LoanDate.Format("2006-01-02"), l.DueDate.Format("2006-01-02"))
	}
}

func (c *Console) handleLoanHistory() {
	id, ok := c.askInt("User ID: ", "user ID")
	if !ok {
		return
	}
	records, err := c.session.LoanHistory(id)
	if err != nil {
		c.printf("Error retrieving loan history: %v\n", err)
		return
	}
	if len(records) == 0 {
		c.printf("No loans recorded for user %d.\n", id)
		return
	}
	for _, r := range records {
		status := "on loan"
		if r.ReturnedAt != nil {
			status = "returned " + r.ReturnedAt.Format("2006-01-02")
		}
		c.printf("%-30s %s -> %s  %s\n", r.ItemTitle, r.LoanDate.Format("2006-01-02"), r.DueDate.Format("2006-01-02"), status)
	}
}

func (c *Console) handleSearchHistory() {
	terms := c.session.History.Entries()
	if len(terms) == 0 {
		c.printf("No searches yet.\n")
		return
	}
	for i, t := range terms {
		c.printf("%d. %s\n", i+1, t)
	}
}
