// Command onefs is a thin CLI wrapper over the onefs library: create a
// container file and run filesystem operations against it from the shell,
// the way the teacher's examples/ programs drive go-diskfs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	onefs "github.com/SBOne-Kenobi/OneFS"
	"github.com/SBOne-Kenobi/OneFS/fsops"
	"github.com/SBOne-Kenobi/OneFS/importer"
	"github.com/SBOne-Kenobi/OneFS/node"
)

type verb struct {
	fn    func(ctx context.Context, args []string) error
	usage string
}

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("onefs")
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	verbs := map[string]verb{
		"create":   {cmdCreate, "create <container>"},
		"ls":       {cmdLs, "ls <container> [dir]"},
		"mkdir":    {cmdMkdir, "mkdir <container> <path>"},
		"rm":       {cmdRm, "rm [-r] <container> <path>"},
		"cat":      {cmdCat, "cat <container> <path>"},
		"put":      {cmdPut, "put <container> <host-file> <dest>"},
		"get":      {cmdGet, "get <container> <src> <host-file>"},
		"mv":       {cmdMv, "mv [-f] <container> <src> <dest>"},
		"cp":       {cmdCp, "cp [-f] <container> <src> <dest>"},
		"find":     {cmdFind, "find [-r] <container> <pattern>"},
		"validate": {cmdValidate, "validate <container>"},
	}

	name, rest := args[0], args[1:]
	v, ok := verbs[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "onefs: unknown command %q\n\n", name)
		printUsage()
		os.Exit(2)
	}
	return v.fn(context.Background(), rest)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: onefs <command> [flags] <container> [args...]")
	fmt.Fprintln(os.Stderr, "commands: create, ls, mkdir, rm, cat, put, get, mv, cp, find, validate")
}

// cmdCreate makes an empty container file.
func cmdCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: onefs create <container>")
	}
	c, err := onefs.Create(fs.Arg(0), onefs.ReadPriority, nil)
	if err != nil {
		return err
	}
	return c.Close()
}

// cmdLs lists the files and folders directly under dir (root if omitted).
func cmdLs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("usage: onefs ls <container> [dir]")
	}
	dir := "/"
	if fs.NArg() == 2 {
		dir = fs.Arg(1)
	}

	c, err := onefs.Open(fs.Arg(0), onefs.ReadPriority, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Navigator.WithFolder(ctx, c.Coordinator, func(cursor fsops.Cursor) error {
		if dir != "/" && dir != "." {
			if err := c.Navigator.Cd(dir); err != nil {
				return err
			}
		}
		folder := c.Navigator.Folder()
		for _, fl := range folder.Folders {
			fmt.Println(fl.Path().String())
		}
		for _, fl := range folder.Files {
			fmt.Println(fl.Path().String())
		}
		return nil
	})
}

// cmdMkdir creates a folder; the destination's parent must already exist.
func cmdMkdir(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mkdir", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: onefs mkdir <container> <path>")
	}
	return withWritableContainer(ctx, fs.Arg(0), func(c *onefs.Container, cursor fsops.Cursor) error {
		return c.Service.CreateFolder(cursor, fs.Arg(1))
	})
}

// cmdRm deletes a file, or recursively a folder when -r is given.
func cmdRm(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	recursive := fs.Bool("r", false, "delete a folder and its contents")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: onefs rm [-r] <container> <path>")
	}
	return withWritableContainer(ctx, fs.Arg(0), func(c *onefs.Container, cursor fsops.Cursor) error {
		if *recursive {
			return c.Service.DeleteFolder(cursor, fs.Arg(1))
		}
		return c.Service.DeleteFile(cursor, fs.Arg(1))
	})
}

// cmdCat writes a stored file's content to stdout.
func cmdCat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cat", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: onefs cat <container> <path>")
	}
	c, err := onefs.Open(fs.Arg(0), onefs.ReadPriority, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Navigator.WithFolder(ctx, c.Coordinator, func(cursor fsops.Cursor) error {
		r, err := c.Service.InputStream(cursor, fs.Arg(1))
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = io.Copy(os.Stdout, r)
		return err
	})
}

// cmdPut imports a host file into the container at dest, recovering the
// host file's birth time via importer.HostFS when the platform supports it.
func cmdPut(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: onefs put <container> <host-file> <dest>")
	}
	hostPath, dest := fs.Arg(1), fs.Arg(2)
	hostDir, hostName := filepath.Split(hostPath)
	if hostDir == "" {
		hostDir = "."
	}
	h := importer.NewHostDir(hostDir)

	return withWritableContainer(ctx, fs.Arg(0), func(c *onefs.Container, cursor fsops.Cursor) error {
		src, err := h.FileAt(hostName)
		if err != nil {
			return err
		}
		return c.Service.ImportFile(cursor, dest, h, src)
	})
}

// cmdGet reads a stored file's content out to a host file.
func cmdGet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: onefs get <container> <src> <host-file>")
	}
	c, err := onefs.Open(fs.Arg(0), onefs.ReadPriority, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Navigator.WithFolder(ctx, c.Coordinator, func(cursor fsops.Cursor) error {
		data, err := c.Service.ReadFile(cursor, fs.Arg(1))
		if err != nil {
			return err
		}
		return os.WriteFile(fs.Arg(2), data, 0o644)
	})
}

// cmdMv moves (renames) a file or folder within the container.
func cmdMv(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mv", flag.ExitOnError)
	override := fs.Bool("f", false, "overwrite an existing destination")
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: onefs mv [-f] <container> <src> <dest>")
	}
	return withWritableContainer(ctx, fs.Arg(0), func(c *onefs.Container, cursor fsops.Cursor) error {
		if err := c.Service.MoveFile(cursor, fs.Arg(1), fs.Arg(2), *override); err == nil {
			return nil
		}
		return c.Service.MoveFolder(cursor, fs.Arg(1), fs.Arg(2), *override)
	})
}

// cmdCp copies a file or folder within the container.
func cmdCp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cp", flag.ExitOnError)
	override := fs.Bool("f", false, "overwrite an existing destination")
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: onefs cp [-f] <container> <src> <dest>")
	}
	return withWritableContainer(ctx, fs.Arg(0), func(c *onefs.Container, cursor fsops.Cursor) error {
		if err := c.Service.CopyFile(cursor, fs.Arg(1), fs.Arg(2), *override); err == nil {
			return nil
		}
		return c.Service.CopyFolder(cursor, fs.Arg(1), fs.Arg(2), *override)
	})
}

// cmdFind lists every file under the container matching a glob pattern.
func cmdFind(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	recursive := fs.Bool("r", true, "recurse into subfolders")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: onefs find [-r] <container> <pattern>")
	}
	c, err := onefs.Open(fs.Arg(0), onefs.ReadPriority, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Navigator.WithFolder(ctx, c.Coordinator, func(cursor fsops.Cursor) error {
		return c.Service.FindFiles(cursor, fs.Arg(1), *recursive, func(fl node.FileLoader) (bool, error) {
			fmt.Println(fl.Path().String())
			return true, nil
		})
	})
}

// cmdValidate checks that every file's stored MD5 matches its content.
func cmdValidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: onefs validate <container>")
	}
	c, err := onefs.Open(fs.Arg(0), onefs.ReadPriority, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	var ok bool
	err = c.Navigator.WithFolder(ctx, c.Coordinator, func(cursor fsops.Cursor) error {
		var verr error
		ok, verr = c.Service.Validate(cursor)
		return verr
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("validate: MD5 mismatch found")
	}
	fmt.Println("ok")
	return nil
}

// withWritableContainer opens path, runs fn under a write grant at the
// container's root, and closes the container, matching the shape every
// mutating subcommand needs.
func withWritableContainer(ctx context.Context, path string, fn func(c *onefs.Container, cursor fsops.Cursor) error) error {
	c, err := onefs.Open(path, onefs.WritePriority, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Navigator.WithMutableFolder(ctx, c.Coordinator, func(cursor fsops.Cursor) error {
		return fn(c, cursor)
	})
}
