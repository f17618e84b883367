// Command passgen prints the bcrypt hash to store in tb_user.password for a new account.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"clinic-scheduler/internal/auth"
)

var pass = flag.String("pass", "", "Password to hash, read from stdin when empty")

func main() {
	flag.Parse()
	password := *pass
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal("no password was given")
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		log.Fatal("no password was given")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(hash)
}
