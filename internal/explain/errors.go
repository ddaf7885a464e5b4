package explain

import "fmt"

type InputShapeError struct {
    What string
    Want int
    Got  int
}

func (e *InputShapeError) Error() string {
    if e.Want == 0 && e.Got == 0 { return fmt.Sprintf("input shape: %s", e.What) }
    return fmt.Sprintf("input shape: %s: want %d, got %d", e.What, e.Want, e.Got)
}
