// Package main provides the docscrape CLI entrypoint.
//
// Usage:
//
//	docscrape serve
//	docscrape crawl [flags] <url>
//	docscrape watch [flags] <task-id>
package main

func main() {
	Execute()
}
