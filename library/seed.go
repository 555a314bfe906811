package library

import "fmt"

// SeedItems returns the startup catalog, books and magazines interleaved.
func SeedItems() []Item {
	return []Item{
		NewBook(1, "Libro 1", 2000, "Autor 1", "Género 1"),
		NewBook(2, "Libro 2", 2005, "Autor 2", "Género 2"),
		NewMagazine(3, "Revista 1", 2010, 1, "Tema 1"),
		NewMagazine(4, "Revista 2", 2015, 2, "Tema 2"),
		NewBook(5, "Libro 3", 2010, "Autor 3", "Género 3"),
		NewMagazine(6, "Revista 3", 2015, 3, "Tema 3"),
		NewBook(7, "Libro 4", 2015, "Autor 4", "Género 4"),
		NewMagazine(8, "Revista 4", 2020, 4, "Tema 4"),
		NewBook(9, "Libro 5", 2020, "Autor 5", "Género 5"),
		NewMagazine(10, "Revista 5", 2020, 5, "Tema 5"),
		NewBook(11, "Libro 6", 2020, "Autor 6", "Género 6"),
		NewMagazine(12, "Revista 6", 2020, 6, "Tema 6"),
	}
}

// SeedUsers returns twelve users allowed two items each. Users 8 to 12 share
// an email address.
func SeedUsers() []*User {
	users := make([]*User, 0, 12)
	for i := 1; i <= 12; i++ {
		email := fmt.Sprintf("usuario%d@email.com", min(i, 7))
		users = append(users, NewUser(i, fmt.Sprintf("Usuario %d", i), email, 2))
	}
	return users
}

// Seed loads the startup items and users into s.
func (s *Session) Seed() error {
	for _, it := range SeedItems() {
		var err error
		switch v := it.(type) {
		case *Book:
			err = s.AddBook(v)
		case *Magazine:
			err = s.AddMagazine(v)
		}
		if err != nil {
			return fmt.Errorf("seed items: %w", err)
		}
	}
	for _, u := range SeedUsers() {
		if err := s.RegisterUser(u); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}
	return nil
}
