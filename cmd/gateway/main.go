// cmd/gateway/main.go
package main

func main() {
	Execute()
}
