package qb

import "context"

// Run is pack(T); spawn(share(pack(T)), pack(T)):
// pack the working tree, share the QPACK to every node, and spawn seeders
// against the job-id share returned.
func Run(ctx context.Context, table *RuleTable, cfg Config, shellT ShellTransport, copyT CopyTransport, srcDir string, targets ...string) (string, error) {
	qpack, err := Pack(table, cfg, srcDir, cfg.Verbose, targets...)
	if err != nil {
		return "", err
	}

	jobID, err := Share(ctx, cfg, copyT, qpack)
	if err != nil {
		return "", err
	}

	return Spawn(ctx, table, cfg, shellT, jobID, qpack)
}
