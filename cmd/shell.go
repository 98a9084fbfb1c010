package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/Benny93/socialnet-go/internal/graph"
	"github.com/Benny93/socialnet-go/internal/network"
)

// Menu choices.
const (
	choiceAddUser = iota + 1
	choiceAddFriendship
	choiceFriendsAtDistance
	choiceCommonFriends
	choiceInfluence
	choiceCommunities
	choiceUserInfo
	choiceListUsers
	choiceExit
)

var (
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

// errEndOfInput ends the menu loop when input runs out.
var errEndOfInput = errors.New("end of input")

// maxLineLength bounds one input line. The rest of a longer line is dropped.
const maxLineLength = 4096

// Shell is the line-based interactive menu.
type Shell struct {
	net  *network.Network
	topN int
	in   *bufio.Reader
	out  io.Writer

	// Interactive enables the menu, prompts and user listings. Piped input
	// gets results only.
	Interactive bool
}

// NewShell creates a shell reading choices from in and writing to out.
func NewShell(net *network.Network, topN int, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		net:  net,
		topN: topN,
		in:   bufio.NewReaderSize(in, maxLineLength),
		out:  out,
	}
}

// Run processes menu choices until exit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	if s.Interactive {
		s.header("===== Social Network Analysis Program =====")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.menu()
		line, err := s.readLine("Enter your choice: ")
		if errors.Is(err, errEndOfInput) {
			return nil
		}
		if err != nil {
			return err
		}

		choice, err := strconv.Atoi(line)
		if err != nil {
			s.fail("Invalid choice. Please try again.")
			continue
		}

		err = s.dispatch(ctx, choice)
		if errors.Is(err, errEndOfInput) {
			return nil
		}
		if err != nil {
			return err
		}
		if choice == choiceExit {
			return nil
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case choiceAddUser:
		return s.addUser()
	case choiceAddFriendship:
		return s.addFriendship()
	case choiceFriendsAtDistance:
		return s.friendsAtDistance(ctx)
	case choiceCommonFriends:
		return s.commonFriends(ctx)
	case choiceInfluence:
		s.influence(ctx)
	case choiceCommunities:
		s.communities(ctx)
	case choiceUserInfo:
		return s.userInfo()
	case choiceListUsers:
		s.listUsers()
	case choiceExit:
		s.printf("Exiting program. Goodbye!\n")
	default:
		s.fail("Invalid choice. Please try again.")
	}
	return nil
}

func (s *Shell) menu() {
	if !s.Interactive {
		return
	}
	s.printf("\n===== Social Network Analysis Menu =====\n")
	s.printf("1. Add a new user\n")
	s.printf("2. Create friendship connection between users\n")
	s.printf("3. Find friends at specific distance\n")
	s.printf("4. Find common friends between users\n")
	s.printf("5. Calculate influence scores\n")
	s.printf("6. Detect communities\n")
	s.printf("7. Show user information\n")
	s.printf("8. List all users\n")
	s.printf("9. Exit\n")
}

func (s *Shell) addUser() error {
	name, err := s.readLine("Enter user name: ")
	if err != nil {
		return err
	}

	id, err := s.net.AddUser(name)
	if err != nil {
		s.failErr("Could not add user", err)
		return nil
	}
	p, _ := s.net.Profile(id)
	s.succeed("User '%s' added successfully with ID: %d", p.Name, id)
	return nil
}

func (s *Shell) addFriendship() error {
	a, ok, err := s.readUser("Enter first user's ID or name: ")
	if !ok || err != nil {
		return err
	}
	b, ok, err := s.readUser("Enter second user's ID or name: ")
	if !ok || err != nil {
		return err
	}

	if err := s.net.AddFriendship(a, b); err != nil {
		s.failErr("Could not create friendship", err)
		return nil
	}
	pa, _ := s.net.Profile(a)
	pb, _ := s.net.Profile(b)
	s.succeed("Friendship created between %s and %s", pa.Name, pb.Name)
	return nil
}

func (s *Shell) friendsAtDistance(ctx context.Context) error {
	start, ok, err := s.readUser("Enter starting user ID or name: ")
	if !ok || err != nil {
		return err
	}
	line, err := s.readLine("Enter distance (1 for direct friends, 2 for friends of friends, etc.): ")
	if err != nil {
		return err
	}
	distance, err := strconv.Atoi(line)
	if err != nil {
		s.fail("Invalid distance: %q", line)
		return nil
	}

	users, err := s.net.FriendsAtDistance(ctx, start, distance)
	if err != nil {
		s.failErr("Could not search friends", err)
		return nil
	}

	p, _ := s.net.Profile(start)
	s.header(fmt.Sprintf("Friends at distance %d from %s:", distance, p.Name))
	if len(users) == 0 {
		s.printf("No friends found at this distance.\n")
		return nil
	}
	s.printProfiles(users)
	return nil
}

func (s *Shell) commonFriends(ctx context.Context) error {
	a, ok, err := s.readUser("Enter first user ID or name: ")
	if !ok || err != nil {
		return err
	}
	b, ok, err := s.readUser("Enter second user ID or name: ")
	if !ok || err != nil {
		return err
	}

	users, err := s.net.CommonFriends(ctx, a, b)
	if err != nil {
		s.failErr("Could not search common friends", err)
		return nil
	}

	pa, _ := s.net.Profile(a)
	pb, _ := s.net.Profile(b)
	s.header(fmt.Sprintf("Common friends between %s and %s:", pa.Name, pb.Name))
	if len(users) == 0 {
		s.printf("No common friends found.\n")
		return nil
	}
	s.printProfiles(users)
	s.printf("Total %d common friend(s) found.\n", len(users))
	return nil
}

func (s *Shell) influence(ctx context.Context) {
	writeInfluence(s.out, s.net.RankInfluence(ctx), s.topN)
}

func (s *Shell) communities(ctx context.Context) {
	writeCommunities(s.out, s.net.DetectCommunities(ctx))
}

func (s *Shell) userInfo() error {
	id, ok, err := s.readUser("Enter user ID or name: ")
	if !ok || err != nil {
		return err
	}
	p, err := s.net.Profile(id)
	if err != nil {
		s.failErr("Could not show user", err)
		return nil
	}

	s.header("User Information:")
	s.printf("ID: %d\n", p.ID)
	s.printf("Name: %s\n", p.Name)
	s.printf("Number of Friends: %d\n", p.Degree())
	s.printf("Influence Score: %.2f\n", p.Influence)
	s.printf("Community ID: %d\n", p.Community)
	s.printf("Friends:\n")
	if len(p.Friends) == 0 {
		s.printf("- No friends yet.\n")
		return nil
	}
	for _, fid := range p.Friends {
		friend, err := s.net.Profile(fid)
		if err != nil {
			continue
		}
		s.printf("- %s (ID: %d)\n", friend.Name, fid)
	}
	return nil
}

func (s *Shell) listUsers() {
	users := s.net.Users()
	s.header("All Users in the Network:")
	if len(users) == 0 {
		s.printf("No users yet.\n")
		return
	}
	for i, u := range users {
		s.printf("%d. %s (ID: %d)\n", i+1, u.Name, u.ID)
	}
}

// readUser lists the users when interactive, then reads and resolves a user
// reference. ok is false when the reference did not resolve.
func (s *Shell) readUser(prompt string) (graph.UserID, bool, error) {
	if s.Interactive && s.net.Stats().Users > 0 {
		s.listUsers()
	}
	ref, err := s.readLine(prompt)
	if err != nil {
		return 0, false, err
	}
	id, err := s.net.Resolve(ref)
	if err != nil {
		s.failErr(fmt.Sprintf("User '%s' not found", ref), err)
		return 0, false, nil
	}
	return id, true, nil
}

// readLine prints the prompt when interactive and returns the next trimmed
// input line, cut to maxLineLength bytes.
func (s *Shell) readLine(prompt string) (string, error) {
	if s.Interactive {
		s.printf("%s", prompt)
	}

	var line []byte
	for {
		chunk, isPrefix, err := s.in.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("reading input: %w", err)
			}
			if line == nil {
				return "", errEndOfInput
			}
			break
		}
		if room := maxLineLength - len(line); room > 0 {
			line = append(line, chunk[:min(room, len(chunk))]...)
		}
		if !isPrefix {
			break
		}
	}
	return strings.TrimSpace(string(line)), nil
}

func (s *Shell) printProfiles(users []graph.Profile) {
	for _, u := range users {
		s.printf("- %s (ID: %d)\n", u.Name, u.ID)
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) header(text string) {
	headerColor.Fprintln(s.out, text)
}

func (s *Shell) succeed(format string, args ...any) {
	successColor.Fprintf(s.out, format+"\n", args...)
}

func (s *Shell) fail(format string, args ...any) {
	errorColor.Fprintf(s.out, "Error: "+format+"\n", args...)
}

func (s *Shell) failErr(msg string, err error) {
	errorColor.Fprintf(s.out, "Error: %s: %v\n", msg, err)
}

// writeInfluence prints the top n entries of a ranking.
func writeInfluence(w io.Writer, ranking []network.RankedUser, n int) {
	headerColor.Fprintln(w, "Most influential users:")
	if len(ranking) == 0 {
		fmt.Fprintln(w, "No users yet.")
		return
	}
	if n > 0 && n < len(ranking) {
		ranking = ranking[:n]
	}
	for _, r := range ranking {
		fmt.Fprintf(w, "%d. %s (ID: %d) - Influence Score: %.2f\n", r.Rank, r.User.Name, r.User.ID, r.User.Influence)
	}
}

// writeCommunities prints every community with its member count and members.
func writeCommunities(w io.Writer, communities []network.CommunityView) {
	headerColor.Fprintln(w, "Detected communities:")
	if len(communities) == 0 {
		fmt.Fprintln(w, "No communities detected.")
		return
	}
	for _, c := range communities {
		fmt.Fprintf(w, "Community %d (%d members):\n", c.Representative, len(c.Members))
		for _, m := range c.Members {
			fmt.Fprintf(w, "- %s (ID: %d)\n", m.Name, m.ID)
		}
		fmt.Fprintln(w)
	}
}
