package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
)

// Columns of the registration form export.
const (
	csvNameColumn   = 1
	csvEmailColumn  = 2
	csvStatusColumn = 18
	csvStatusDone   = "Complete"
)

// addUser creates a single user. An existing email is an error.
func (cli *commandLine) addUser(name, email string) error {
	users := repository.NewUserRepository(cli.db)

	email = strings.TrimSpace(email)
	if _, err := users.GetByEmail(email); err == nil {
		return fmt.Errorf("user %s already exists", email)
	} else if !repository.IsNotFound(err) {
		return err
	}

	if err := users.Create(&models.User{Name: strings.TrimSpace(name), Email: email}); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Added user: %s\n", name)
	return nil
}

// importUsers adds every completed registration in a CSV export, skipping
// emails that already exist. The first row is a header.
func (cli *commandLine) importUsers(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open users file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	users := repository.NewUserRepository(cli.db)
	added, skipped := 0, 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			cli.log.Error().Err(err).Int("line", line).Msg("Error while reading a record from the users file")
			continue
		}
		if len(record) <= csvStatusColumn || strings.TrimSpace(record[csvStatusColumn]) != csvStatusDone {
			continue
		}

		name := strings.TrimSpace(record[csvNameColumn])
		email := strings.TrimSpace(record[csvEmailColumn])
		if _, err := users.GetByEmail(email); err == nil {
			fmt.Fprintf(cli.out, "The user %s already exists.\n", email)
			skipped++
			continue
		} else if !repository.IsNotFound(err) {
			return err
		}

		if err := users.Create(&models.User{Name: name, Email: email}); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Added user: %s\n", name)
		added++
	}

	fmt.Fprintf(cli.out, "Imported %d users, skipped %d existing.\n", added, skipped)
	return nil
}

// makeAdmin grants admin to the user with email. Granting twice is a no-op.
func (cli *commandLine) makeAdmin(email string) error {
	users := repository.NewUserRepository(cli.db)

	user, err := users.GetByEmail(email)
	if err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}

	isAdmin, err := users.IsAdmin(user.ID)
	if err != nil {
		return err
	}
	if !isAdmin {
		if err := users.CreateAdmin(user.ID); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "%s is an admin.\n", email)
	return nil
}
