package app

import "context"

// Patch cleans and rewrites a package root without building it.
func (s Service) Patch(ctx context.Context, req PatchRequest) (PatchResult, error) {
	opts, err := buildOptions(BuildRequest{
		RepoPath:       req.RepoPath,
		PackageName:    req.PackageName,
		DropRunDepends: req.DropRunDepends,
		AllowMissing:   req.AllowMissing,
	})
	if err != nil {
		return PatchResult{}, err
	}
	outcome, err := s.builder().Prepare(ctx, opts)
	return PatchResult{
		Manifest: outcome.Manifest,
		Found:    outcome.Found,
		Changed:  outcome.Changed,
	}, err
}
