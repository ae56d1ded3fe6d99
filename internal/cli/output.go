package cli

import (
	"encoding/json"
	"fmt"
)

// printResult prints v as indented JSON to stdout; marshal failures are
// not expected for the plain-struct/map shapes every command returns,
// but are reported rather than ignored.
func printResult(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
