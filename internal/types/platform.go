package types

const (
	DefaultOSName    = "ubuntu"
	DefaultOSVersion = "jammy"
	DefaultROSDistro = "noetic"
)

// TargetPlatform identifies the distribution the packages are built for.
type TargetPlatform struct {
	OSName    string `yaml:"os_name"`
	OSVersion string `yaml:"os_version"`
	ROSDistro string `yaml:"ros_distro"`
}

// DefaultPlatform returns ROS Noetic on Ubuntu Jammy.
func DefaultPlatform() TargetPlatform {
	return TargetPlatform{
		OSName:    DefaultOSName,
		OSVersion: DefaultOSVersion,
		ROSDistro: DefaultROSDistro,
	}
}
