package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"library-lending/library"
)

type bookInput struct {
	ID     int    `validate:"gt=0"`
	Title  string `validate:"required"`
	Year   int    `validate:"gte=0,lte=9999"`
	Author string `validate:"required"`
	Genre  string `validate:"required"`
}

func (in bookInput) build() *library.Book {
	return library.NewBook(in.ID, in.Title, in.Year, in.Author, in.Genre)
}

type magazineInput struct {
	ID      int    `validate:"gt=0"`
	Title   string `validate:"required"`
	Year    int    `validate:"gte=0,lte=9999"`
	Edition int    `validate:"gte=0"`
	Topics  string `validate:"required"`
}

func (in magazineInput) build() *library.Magazine {
	return library.NewMagazine(in.ID, in.Title, in.Year, in.Edition, in.Topics)
}

type userInput struct {
	ID    int    `validate:"gt=0"`
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Max   int    `validate:"gte=0"`
}

func (in userInput) build() *library.User {
	return library.NewUser(in.ID, in.Name, in.Email, in.Max)
}

// describe turns validator errors into one line per failed field.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "gt", "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s is out of range (%s %s)", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
