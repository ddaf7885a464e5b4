package ensemble

import "fmt"

type MalformedEnsembleError struct {
    Tree   int
    Node   string
    Reason string
}

func (e *MalformedEnsembleError) Error() string {
    if e.Tree < 0 { return fmt.Sprintf("malformed ensemble: %s", e.Reason) }
    if e.Node == "" { return fmt.Sprintf("malformed ensemble: tree %d: %s", e.Tree, e.Reason) }
    return fmt.Sprintf("malformed ensemble: tree %d: node %s: %s", e.Tree, e.Node, e.Reason)
}

type UnsupportedTreeFormError struct {
    Form     string
    Guidance string
}

func (e *UnsupportedTreeFormError) Error() string {
    return fmt.Sprintf("unsupported tree form %q: %s", e.Form, e.Guidance)
}
