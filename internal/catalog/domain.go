// internal/catalog/domain.go
package catalog

// Book is a catalog entry. Identity is the ISBN.
type Book struct {
	ISBN     string `json:"isbn" db:"isbn"`
	Title    string `json:"title" db:"title"`
	Author   string `json:"author" db:"author"`
	Borrowed bool   `json:"borrowed" db:"borrowed"`
}

// IsBorrowed reports whether the book is currently lent out.
func (b *Book) IsBorrowed() bool {
	return b.Borrowed
}

// Borrow marks the book as lent out.
func (b *Book) Borrow() {
	b.Borrowed = true
}

// Return marks the book as available again.
func (b *Book) Return() {
	b.Borrowed = false
}
