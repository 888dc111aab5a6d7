//go:generate go run github.com/UnAfraid/dataloader/cmd/sourcegen -name UserSource -fileName user_source_gen.go -groupType string -keyType string -valueType *github.com/UnAfraid/dataloader/example.User

package example

// User is some kind of database backed model
type User struct {
	ID   string
	Name string
}
