// Command flowchart generates flowchart images from a topic with an LLM,
// or renders flowchart text it is given.
package main

func main() {
	Execute()
}
