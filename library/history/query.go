package history

import (
	"github.com/AntonStoeckl/library-coordination-go/library/core"
)

const (
	queryType = "LendingHistory"
)

// Query asks for the lending history of one user.
type Query struct {
	UserName core.UserNameString
}

// BuildQuery creates a Query, rejecting an empty user name.
func BuildQuery(userName string) (Query, error) {
	if userName == "" {
		return Query{}, core.ErrEmptyUserName
	}

	return Query{UserName: userName}, nil
}

// QueryType returns the query type used in logs, metrics and spans.
func (q Query) QueryType() string {
	return queryType
}
