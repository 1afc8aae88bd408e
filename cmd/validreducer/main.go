// Command validreducer checks state documents and action logs against JSON
// Schemas the same way a wrapped reducer does at runtime.
package main

func main() {
	Execute()
}
