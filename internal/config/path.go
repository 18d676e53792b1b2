package config

const (
	//? These paths must match the paths in the embed directive

	StaticLocalDir = "static"
	StaticUrlPath  = "/" + StaticLocalDir + "/"

	PostsUrlPath = "/posts/"

	FeedPath = "/feed.xml"

	TemplatesLocalDir = "templates"

	TemplateLayout = "layout.html"
	TemplateIndex  = "index.html"
	TemplatePost   = "post.html"
)
