package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the home page listing all posts.
	RouteRoot = "/"
	// RouteRegister is the account registration route.
	RouteRegister = "/register"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteMakePost is the post creation route.
	RouteMakePost = "/make_post"
	// RouteAbout is the about page route.
	RouteAbout = "/about"
	// RouteContact is the contact page route.
	RouteContact = "/contact"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteViewPost is the post view route pattern.
	RouteViewPost = "/view_post" + RouteParamID
	// RouteEditPost is the post edit route pattern.
	RouteEditPost = "/edit_post" + RouteParamID
	// RouteDeletePost is the post delete route pattern.
	RouteDeletePost = "/delete_post" + RouteParamID
)

const (
	redirectHome  = RouteRoot
	redirectLogin = RouteLogin

	redirectViewPostID = "/view_post/%d"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
