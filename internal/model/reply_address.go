package model

import "fmt"

// Reply actions a minted address can carry.
const (
	ReplyActionAppendContent  = "append_content"
	ReplyActionReplaceContent = "replace_content"
)

// ReplyAddress is a single-use token minted per outgoing email. A reply
// sent to the rendered address routes back to the right post with the
// right edit semantics.
type ReplyAddress struct {
	ID             int64
	Address        string
	UserID         int64
	PostID         int64
	ReplyAction    string
	AllowedReplies int
	UsedCount      int
}

// AsEmailAddress renders the token into a routable mailbox on the
// reply host, e.g. reply+4af0a8171e3f4c0bb9e42ab9@ask.example.org.
func (a *ReplyAddress) AsEmailAddress(replyHost string) string {
	return fmt.Sprintf("reply+%s@%s", a.Address, replyHost)
}
