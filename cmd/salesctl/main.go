// Command salesctl runs maintenance tasks against the sales store.
package main

func main() {
	Execute()
}
