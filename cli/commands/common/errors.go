package common

import "fmt"

type WrongNumberOfArgsError struct {
	Command  string
	Expected int
	Actual   int
}

func (err WrongNumberOfArgsError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", err.Command, err.Expected, err.Actual)
}
