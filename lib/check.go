package lib

/* check.go contains the sanity checks run before any conversion work is
done. */

import (
	"fmt"
	"os"

	"github.com/phil-mansfield/foamtonumpy/lib/foamio"
)

// Check makes sure that the case, its polyMesh, and the output directory
// named in args exist, and that the output directory can be written to. It
// returns an error describing the first problem found.
func Check(args *Args) error {
	if err := checkDir(args.Case, "case directory"); err != nil {
		return err
	}

	c := foamio.NewCase(args.Case, args.Region)
	if err := checkDir(c.MeshDir(), "polyMesh directory"); err != nil {
		if args.Region != "" {
			return fmt.Errorf("%s Is '%s' a region of this case?",
				err.Error(), args.Region)
		}
		return err
	}

	if err := checkDir(args.OutDir, "output directory"); err != nil {
		return err
	}
	if err := writable(args.OutDir); err != nil {
		return fmt.Errorf("The output directory %s can't be written to: %s",
			args.OutDir, err.Error())
	}

	return nil
}

func checkDir(dir, desc string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("The %s %s does not exist.", desc, dir)
	} else if err != nil {
		return fmt.Errorf("Could not access the %s %s: %s",
			desc, dir, err.Error())
	} else if !info.IsDir() {
		return fmt.Errorf("The %s %s is not a directory.", desc, dir)
	}
	return nil
}
