// Command tcgctl runs catalog maintenance against the configured store:
// schema migrations and catalog syncs from the card-data provider.
package main

func main() {
	Execute()
}
