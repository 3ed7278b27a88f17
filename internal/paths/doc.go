// Provides platform-appropriate paths for the build pipeline.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS. The tool name "crateforge" is used as the subdirectory under
// each base path.
package paths
