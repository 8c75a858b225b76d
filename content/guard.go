package content

import "context"

// guardUnique fails with ErrConflict when another record already holds
// value in field. selfID excludes the record being updated.
//
// The lookup and the following write are separate operations, so two
// concurrent writers can both pass. Drivers with unique indexes (SQLite,
// PostgreSQL, MongoDB) reject the second insert anyway; on DynamoDB the
// window stays open.
func guardUnique[T keyed](ctx context.Context, c collection[T], field, value, selfID, msg string) error {
	matches, err := c.find(ctx, field, value)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.key() != selfID {
			return conflict("%s", msg)
		}
	}
	return nil
}
