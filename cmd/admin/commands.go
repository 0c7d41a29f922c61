package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/raknago/parking-backend/internal/access"
	"github.com/raknago/parking-backend/internal/domain"
)

const relogHint = "The user must sign out and sign in again to see the admin dashboard."

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func (c *cli) listUsers(ctx context.Context, args []string) int {
	var g globalFlags
	var target string
	fs := c.flagSet("list-users", &g)
	fs.StringVar(&target, "target", "", "email of a user to offer promotion for")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	svc, cleanup, ok := c.open(ctx, g)
	if !ok {
		return 1
	}
	defer cleanup()

	users, err := svc.ListUsers(ctx)
	if err != nil {
		return c.fail(err)
	}
	if len(users) == 0 {
		fmt.Fprintln(c.out, "No users found in the users collection.")
		fmt.Fprintln(c.out, "Users appear here once they have signed up and their profile document was created.")
		return 0
	}

	fmt.Fprintf(c.out, "Found %d user(s):\n\n", len(users))
	for i, u := range users {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, orNA(u.Email))
		fmt.Fprintf(c.out, "   Name: %s\n", orNA(u.Name))
		fmt.Fprintf(c.out, "   Role: %s\n", u.Role)
		fmt.Fprintf(c.out, "   Status: %s\n", u.Status)
		fmt.Fprintf(c.out, "   User ID: %s\n\n", u.ID)
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return 0
	}

	var found *domain.User
	for i := range users {
		if strings.EqualFold(strings.TrimSpace(users[i].Email), target) {
			found = &users[i]
			break
		}
	}
	if found == nil {
		fmt.Fprintf(c.out, "Target email %q not found in the list above.\n", target)
		return 0
	}

	fmt.Fprintf(c.out, "Found target user: %s\n   User ID: %s\n   Current Role: %s\n", target, found.ID, found.Role)
	if !c.confirm("Make this user admin? (yes/no): ") {
		fmt.Fprintln(c.out, "Operation cancelled.")
		return 0
	}
	if _, err := svc.PromoteToAdmin(ctx, found.ID); err != nil {
		return c.fail(err)
	}
	fmt.Fprintln(c.out, "User is now admin.")
	fmt.Fprintln(c.out, relogHint)
	return 0
}

func (c *cli) makeAdmin(ctx context.Context, args []string) int {
	var g globalFlags
	var email string
	var yes bool
	fs := c.flagSet("make-admin", &g)
	fs.StringVar(&email, "email", "", "email of the user to promote")
	fs.BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	return c.promoteByEmail(ctx, g, email, yes)
}

func (c *cli) promote(ctx context.Context, args []string) int {
	var g globalFlags
	fs := c.flagSet("promote", &g)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.errOut, "usage: admin promote EMAIL")
		return 1
	}
	return c.promoteByEmail(ctx, g, fs.Arg(0), true)
}

func (c *cli) promoteByEmail(ctx context.Context, g globalFlags, email string, yes bool) int {
	svc, cleanup, ok := c.open(ctx, g)
	if !ok {
		return 1
	}
	defer cleanup()

	if strings.TrimSpace(email) == "" {
		email = c.prompt("Enter user email: ")
	}

	u, err := svc.FindUserByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			fmt.Fprintf(c.out, "User %q not found.\n", strings.TrimSpace(email))
			c.printAvailable(ctx, svc)
			return 1
		}
		return c.fail(err)
	}

	fmt.Fprintln(c.out, "User Info:")
	fmt.Fprintf(c.out, "   Name: %s\n", orNA(u.Name))
	fmt.Fprintf(c.out, "   Email: %s\n", u.Email)
	fmt.Fprintf(c.out, "   Current Role: %s\n", u.Role)
	fmt.Fprintf(c.out, "   User ID: %s\n", u.ID)

	if !yes && !c.confirm("Make this user admin? (yes/no): ") {
		fmt.Fprintln(c.out, "Operation cancelled.")
		return 0
	}

	if _, err := svc.PromoteToAdmin(ctx, u.ID); err != nil {
		return c.fail(err)
	}
	fmt.Fprintln(c.out, "User is now admin.")
	fmt.Fprintln(c.out, relogHint)
	return 0
}

func (c *cli) printAvailable(ctx context.Context, svc adminAPI) {
	users, err := svc.ListUsers(ctx)
	if err != nil {
		fmt.Fprintf(c.errOut, "error listing users: %v\n", err)
		return
	}
	if len(users) == 0 {
		fmt.Fprintln(c.out, "No users found in database.")
		return
	}
	fmt.Fprintf(c.out, "Available users (%d):\n", len(users))
	for i, u := range users {
		fmt.Fprintf(c.out, "   %d. %s (%s)\n", i+1, orNA(u.Email), orNA(u.Name))
	}
	fmt.Fprintln(c.out, "Make sure the user has completed signup; the user document is created at sign up.")
}

func (c *cli) setup(ctx context.Context, args []string) int {
	var g globalFlags
	var rulesOut string
	fs := c.flagSet("setup", &g)
	fs.StringVar(&rulesOut, "rules-out", "firestore.rules", "where to write the rule document")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	svc, cleanup, ok := c.open(ctx, g)
	if !ok {
		return 1
	}
	defer cleanup()

	names, err := svc.Setup(ctx)
	if err != nil {
		return c.fail(err)
	}
	for _, n := range names {
		fmt.Fprintf(c.out, "Collection %s ready\n", n)
	}

	if err := c.writeFile(rulesOut, []byte(access.RulesDocument())); err != nil {
		return c.fail(fmt.Errorf("write rules: %w", err))
	}
	fmt.Fprintf(c.out, "Rules written to %s\n", rulesOut)
	return 0
}

func (c *cli) backup(ctx context.Context, args []string) int {
	var g globalFlags
	var createdBy string
	fs := c.flagSet("backup", &g)
	fs.StringVar(&createdBy, "created-by", "", "admin user id recorded on the backup")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	svc, cleanup, ok := c.open(ctx, g)
	if !ok {
		return 1
	}
	defer cleanup()

	res, err := svc.Backup(ctx, createdBy)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.out, "Backup %s recorded: users=%d parking_spots=%d bookings=%d\n",
		res.ID, res.Backup.Users, res.Backup.ParkingSpots, res.Backup.Bookings)
	if res.Location != "" {
		fmt.Fprintf(c.out, "Snapshot uploaded to %s\n", res.Location)
	}
	return 0
}
