// lzops - landing zone operations toolkit.
// Scans, reports on, tags and manages AWS resources across landing zones.
package main

func main() {
	Execute()
}
