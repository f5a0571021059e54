// Package command implements dispatch for the server's command set,
// grounded on cmd.c's CmdT/cmd_from_bulk/cmd_from_array shape (arity and
// type validation before execution) generalized to spec.md §4.4's command
// table plus a handful of supplemented keyspace operations dropped by the
// distillation (PUSH/POP/TYPE/DBSIZE/FLUSHDB).
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lexidb/lexid/internal/acl"
	"github.com/lexidb/lexid/internal/database"
	"github.com/lexidb/lexid/internal/object"
)

// pushKey is the keyspace-wide Array-valued key the bare PUSH/POP commands
// operate on, supplementing the distillation's dropped PUSH/POP pair from
// cmd.c without introducing a second top-level data structure.
const pushKey = "__push__"

// Context holds everything dispatch needs that outlives a single
// connection: every SELECT-able database and the configured ACL users.
type Context struct {
	Databases     []*database.Database
	Users         map[string]*acl.User
	ProtectedMode bool
	Version       string
}

// Session is per-connection state: which database is selected and who (if
// anyone) has authenticated.
type Session struct {
	DBIndex       int
	User          *acl.User
	Authenticated bool
}

func (c *Context) requiresAuth() bool {
	return c.ProtectedMode && len(c.Users) > 0
}

func (c *Context) db(sess *Session) *database.Database {
	return c.Databases[sess.DBIndex]
}

// Dispatch executes one command (args[0] is the command name, args[1:]
// its arguments) and returns the reply Object.
func Dispatch(ctx *Context, sess *Session, args []object.Object) object.Object {
	if len(args) == 0 {
		return object.NewError(errorText(CodeInvalidCommand, "empty command"))
	}
	if args[0].Kind() != object.String {
		return object.NewError(errorText(CodeInvalidCommand, "command name must be a string"))
	}
	name := strings.ToUpper(args[0].Str())
	rest := args[1:]

	if name != "AUTH" && name != "PING" && ctx.requiresAuth() && !sess.Authenticated {
		return object.NewError(errorText(CodeUnauthenticated, "authentication required"))
	}

	switch name {
	case "PING":
		return cmdPing(rest)
	case "AUTH":
		return cmdAuth(ctx, sess, rest)
	case "SELECT":
		return cmdSelect(ctx, sess, rest)
	case "SET":
		return cmdSet(ctx, sess, rest)
	case "GET":
		return cmdGet(ctx, sess, rest)
	case "DEL":
		return cmdDel(ctx, sess, rest)
	case "EXISTS":
		return cmdExists(ctx, sess, rest)
	case "KEYS":
		return cmdKeys(ctx, sess, rest)
	case "INFO":
		return cmdInfo(ctx, sess, rest)
	case "PUSH":
		return cmdPush(ctx, sess, rest)
	case "POP":
		return cmdPop(ctx, sess, rest)
	case "TYPE":
		return cmdType(ctx, sess, rest)
	case "DBSIZE":
		return cmdDBSize(ctx, sess, rest)
	case "FLUSHDB":
		return cmdFlushDB(ctx, sess, rest)
	default:
		return object.NewError(errorText(CodeInvalidCommand, "unknown command %q", name))
	}
}

func arity(args []object.Object, want int) error {
	if len(args) != want {
		return fmt.Errorf("expected %d argument(s), got %d", want, len(args))
	}
	return nil
}

func stringArg(o object.Object) (string, bool) {
	return o.Str(), o.Kind() == object.String
}

func cmdPing(args []object.Object) object.Object {
	if len(args) == 0 {
		return object.NewString("PONG")
	}
	if err := arity(args, 1); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "PING: %s", err))
	}
	return args[0]
}

func cmdAuth(ctx *Context, sess *Session, args []object.Object) object.Object {
	var username, password string
	switch len(args) {
	case 1:
		username = "default"
		var ok bool
		if password, ok = stringArg(args[0]); !ok {
			return object.NewError(errorText(CodeInvalidCommand, "AUTH: password must be a string"))
		}
	case 2:
		var ok bool
		if username, ok = stringArg(args[0]); !ok {
			return object.NewError(errorText(CodeInvalidCommand, "AUTH: username must be a string"))
		}
		if password, ok = stringArg(args[1]); !ok {
			return object.NewError(errorText(CodeInvalidCommand, "AUTH: password must be a string"))
		}
	default:
		return object.NewError(errorText(CodeInvalidCommand, "AUTH: expected 1 or 2 arguments, got %d", len(args)))
	}
	user, ok := ctx.Users[username]
	if !ok || !user.Enabled || !user.Authenticate(password) {
		return object.NewError(errorText(CodeBadAuth, "invalid username or password"))
	}
	sess.User = user
	sess.Authenticated = true
	return object.NewString("OK")
}

func cmdSelect(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 1); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "SELECT: %s", err))
	}
	raw, ok := stringArg(args[0])
	if !ok {
		return object.NewError(errorText(CodeInvalidCommand, "SELECT: index must be a string"))
	}
	idx, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "SELECT: index must be an integer"))
	}
	if idx < 0 || idx >= int64(len(ctx.Databases)) {
		return object.NewError(errorText(CodeDBRange, "database index %d out of range [0,%d)", idx, len(ctx.Databases)))
	}
	sess.DBIndex = int(idx)
	return object.NewString("OK")
}

func cmdSet(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 2); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "SET: %s", err))
	}
	key, ok := stringArg(args[0])
	if !ok {
		return object.NewError(errorText(CodeInvalidKey, "SET: key must be a string"))
	}
	ctx.db(sess).Set(key, args[1])
	return object.NewString("OK")
}

func cmdGet(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 1); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "GET: %s", err))
	}
	key, ok := stringArg(args[0])
	if !ok {
		return object.NewError(errorText(CodeInvalidKey, "GET: key must be a string"))
	}
	v, found := ctx.db(sess).Get(key)
	if !found {
		return object.NewNull()
	}
	return v
}

func cmdDel(ctx *Context, sess *Session, args []object.Object) object.Object {
	if len(args) == 0 {
		return object.NewError(errorText(CodeInvalidCommand, "DEL: expected at least 1 argument"))
	}
	var removed int64
	for _, a := range args {
		key, ok := stringArg(a)
		if !ok {
			return object.NewError(errorText(CodeInvalidKey, "DEL: key must be a string"))
		}
		if ctx.db(sess).Delete(key) {
			removed++
		}
	}
	return object.NewInt64(removed)
}

func cmdExists(ctx *Context, sess *Session, args []object.Object) object.Object {
	if len(args) == 0 {
		return object.NewError(errorText(CodeInvalidCommand, "EXISTS: expected at least 1 argument"))
	}
	var count int64
	for _, a := range args {
		key, ok := stringArg(a)
		if !ok {
			return object.NewError(errorText(CodeInvalidKey, "EXISTS: key must be a string"))
		}
		if ctx.db(sess).Exists(key) {
			count++
		}
	}
	return object.NewInt64(count)
}

func cmdKeys(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 0); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "KEYS: %s", err))
	}
	keys := ctx.db(sess).Keys()
	elems := make([]object.Object, len(keys))
	for i, k := range keys {
		elems[i] = object.NewString(k)
	}
	return object.NewArray(elems)
}

func cmdInfo(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 0); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "INFO: %s", err))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "version:%s\n", ctx.Version)
	fmt.Fprintf(&b, "databases:%d\n", len(ctx.Databases))
	fmt.Fprintf(&b, "protected_mode:%t\n", ctx.ProtectedMode)
	for i, d := range ctx.Databases {
		fmt.Fprintf(&b, "db%d:keys=%d\n", i, d.Len())
	}
	return object.NewString(b.String())
}

func cmdPush(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 1); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "PUSH: %s", err))
	}
	db := ctx.db(sess)
	existing, _ := db.Get(pushKey)
	var elems []object.Object
	if existing.Kind() == object.Array {
		elems = existing.Elements()
	}
	db.Set(pushKey, object.NewArray(append(elems, args[0])))
	return object.NewString("OK")
}

func cmdPop(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 0); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "POP: %s", err))
	}
	db := ctx.db(sess)
	existing, found := db.Get(pushKey)
	if !found || existing.Kind() != object.Array || len(existing.Elements()) == 0 {
		return object.NewNull()
	}
	elems := existing.Elements()
	last := elems[len(elems)-1]
	db.Set(pushKey, object.NewArray(elems[:len(elems)-1]))
	return last
}

func cmdType(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 1); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "TYPE: %s", err))
	}
	key, ok := stringArg(args[0])
	if !ok {
		return object.NewError(errorText(CodeInvalidKey, "TYPE: key must be a string"))
	}
	v, found := ctx.db(sess).Get(key)
	if !found {
		return object.NewString(object.Null.String())
	}
	return object.NewString(v.Kind().String())
}

func cmdDBSize(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 0); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "DBSIZE: %s", err))
	}
	return object.NewInt64(int64(ctx.db(sess).Len()))
}

func cmdFlushDB(ctx *Context, sess *Session, args []object.Object) object.Object {
	if err := arity(args, 0); err != nil {
		return object.NewError(errorText(CodeInvalidCommand, "FLUSHDB: %s", err))
	}
	ctx.db(sess).Flush()
	return object.NewString("OK")
}
