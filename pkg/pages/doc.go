// Package pages provides page fixture sources for the live server.
//
// The server reads fixtures through io/fs. A local directory is served
// with os.DirFS; S3FS serves the same layout from an S3 bucket:
//
//	bucket, prefix, _ := pages.ParseURL("s3://fixtures/todo/")
//	fsys := pages.NewS3FS(pages.NewClient(pages.ClientConfig{Region: "eu-west-1"}), bucket, prefix)
//	names, _ := fs.Glob(fsys, "*.html")
package pages
