package document

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// FromJSON decodes MongoDB extended JSON, relaxed or canonical, into a
// Document. Plain JSON is valid relaxed extended JSON; numbers without a
// fraction become int32 or int64.
func FromJSON(data []byte) (Document, error) {
	var d bson.D
	if err := bson.UnmarshalExtJSON(data, false, &d); err != nil {
		return nil, fmt.Errorf("decoding extended json: %w", err)
	}
	return Document(d), nil
}

// MustFromJSON is FromJSON for fixtures; it panics on malformed input.
func MustFromJSON(data string) Document {
	d, err := FromJSON([]byte(data))
	if err != nil {
		panic(err)
	}
	return d
}
