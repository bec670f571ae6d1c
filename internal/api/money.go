package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// amount is a whole-baht value sent by the website either as a JSON number
// or as a formatted string such as "฿1,250".
type amount int64

var amountCleaner = strings.NewReplacer("฿", "", ",", "", " ", "", "\u00a0", "", "\t", "")

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = amountCleaner.Replace(strings.TrimSpace(raw))
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return errors.Errorf("not a whole amount: %s", data)
	}
	*a = amount(v)
	return nil
}
