// Command datagen generates synthetic datasets from DataSpec files.
package main

func main() {
	Execute()
}
